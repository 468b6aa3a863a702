// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/dlconfig/dlconfig/cmd/dlconfig"

func main() {
	cmd.Execute()
}
