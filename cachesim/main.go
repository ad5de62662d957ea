// Command cachesim replays a memory address trace against simulated caches
// and reports their hit rates.
package main

import "github.com/sarchlab/cachesim/cachesim/cmd"

func main() {
	cmd.Execute()
}
