// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/omodkit/omodkit/cmd/omodkit"

func main() {
	cmd.Execute()
}
