package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"code.sztanpet.net/zvpsz/buzzer/internal/buzzer"
	"code.sztanpet.net/zvpsz/buzzer/internal/gpio"
	"code.sztanpet.net/zvpsz/buzzer/internal/pattern"
)

func main() {
	pin := flag.Int("pin", 32, "buzzer pin")
	activeHigh := flag.Bool("active-high", true, "buzzer sounds when the pin is high")
	mode := flag.String("mode", "board", "pin numbering, board or bcm")
	driver := flag.String("driver", "periph", "gpio driver: periph, rpio or sysfs")
	count := flag.Int("n", 0, "play the pattern n times, 0 loops forever")
	pause := flag.Duration("pause", 500*time.Millisecond, "pause between repeats")
	flag.Parse()

	m, err := gpio.ParseMode(*mode)
	if err != nil {
		fmt.Printf("err: %v\n", err)
		os.Exit(1)
	}
	drv, err := gpio.New(*driver, m)
	if err != nil {
		fmt.Printf("err: %v\n", err)
		os.Exit(1)
	}
	defer drv.Close()

	p := pattern.Pattern{buzzer.DefaultBeep}
	if flag.NArg() > 0 {
		p = pattern.Decode(strings.Join(flag.Args(), ","))
	}
	fmt.Printf("playing %q (%v)\n", pattern.Encode(p), p.Total())

	b := buzzer.New(buzzer.PinConfig{Pin: *pin, ActiveHigh: *activeHigh}, drv)
	if err := b.InitPin(); err != nil {
		fmt.Printf("init err: %v\n", err)
		return
	}

	for i := 0; *count == 0 || i < *count; i++ {
		if err := b.Buzz(p); err != nil {
			fmt.Printf("buzz err: %v\n", err)
			return
		}
		<-time.After(*pause)
	}
}
