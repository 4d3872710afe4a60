// Command policyai runs the PolicyAI CLI: apply a bundle of
// natural-language policies against a piece of text, or inspect a
// .policytype schema file.
package main

import "github.com/policyai/policyai-go/cmd/policyai/cmd"

func main() {
	cmd.Execute()
}
