// Package main implements sigraise, a small companion tool that delivers a
// signal (Unix) or console control event (Windows) to a target process, used
// to exercise sigwatch and sigflow consumers.
//
// Usage:
//
//	sigraise -signal SIGUSR1 -pid 12345
//	sigraise -signal CTRL_BREAK -pid 12345   (Windows; pid is a process group)
package main

import (
	"flag"
	"fmt"
	"os"

	"tools.zach/dev/sigflow"
)

func main() {
	name := flag.String("signal", "", "signal or event name to deliver")
	pid := flag.Int("pid", 0, "target process (Unix) or process group (Windows)")
	count := flag.Int("count", 1, "number of deliveries")
	flag.Parse()

	if *name == "" || *pid == 0 {
		flag.Usage()
		os.Exit(2)
	}

	kind, err := sigflow.ParseKind(*name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sigraise: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < *count; i++ {
		if err := raise(kind, *pid); err != nil {
			fmt.Fprintf(os.Stderr, "sigraise: %v\n", err)
			os.Exit(1)
		}
	}
}
