// Command tripctl plans trips and manages the reference tables from a shell.
// It reads the same environment variables as the API server.
package main

func main() {
	Execute()
}
