// Command pipetune inspects and tests pipeline profiles.
//
//	pipetune hash shader.wgsl
//	pipetune match --profile runtime.json --ps 0x751207727c904749dd6c573c46e6adf8:2048
//	pipetune dump --settings settings.yaml
//	pipetune check runtime.json --watch
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "pipetune:", err)
		stop()
		os.Exit(1)
	}
}
