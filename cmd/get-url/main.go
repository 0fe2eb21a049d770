package main

import (
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

func main() {
	defer klog.Flush()
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "get-url: %v\n", err)
		klog.Flush()
		os.Exit(1)
	}
}
