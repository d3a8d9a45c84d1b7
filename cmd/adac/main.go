// Command adac is the driver surface for the Ada-to-LLVM compiler core: it
// wraps pkg/ada and pkg/ali's inspection and ordering operations in a cobra
// CLI (internal/cli).
package main

import "github.com/adalore/adac/internal/cli"

func main() {
	cli.Execute()
}
