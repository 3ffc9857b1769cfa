// Package main implements the poolsim binary: a load simulator comparing the
// latency and success profile of per-call direct connection establishment
// against acquisition from a shared connection pool.
package main

func main() {
	Execute()
}
