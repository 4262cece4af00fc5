// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/extbin/extbin/cmd/extbin"

func main() {
	cmd.Execute()
}
