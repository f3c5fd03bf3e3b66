package main

import (
	"context"
	"fmt"
	"os"

	"coap-adapter-go/internal/bootstrap"
)

func main() {
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "coap-adapter failed: %v\n", err)
		os.Exit(1)
	}
}
