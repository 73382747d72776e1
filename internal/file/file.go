package file

import (
	"io"
	"os"
	"path/filepath"
)

// WriteAtomically writes r to a temporary file next to dest and renames it over dest,
// readers either see the old or the new contents, never a partial file.
func WriteAtomically(dest string, r io.Reader) error {
	// same directory, rename across filesystems is not atomic
	tf, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tf.Name()) // no-op after a successful rename
	defer tf.Close()

	_, err = io.Copy(tf, r)
	if err != nil {
		return err
	}

	err = tf.Chmod(0644)
	if err != nil {
		return err
	}

	err = tf.Sync()
	if err != nil {
		return err
	}

	err = tf.Close()
	if err != nil {
		return err
	}

	return os.Rename(tf.Name(), dest)
}

// Append adds data to the end of path, creating it if needed.
func Append(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	_, err = f.Write(data)
	if err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
