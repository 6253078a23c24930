// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

// Package main exposes the https://godoc.org/github.com/bow/domwait/wait package as the domwait
// command line application.
//
// The main use case for domwait is to block a script until a page reaches a given state: an
// element shows up, or a loading indicator goes away. It works on HTML files, reloading them as
// they are rewritten, and on live pages loaded in a browser.
package main

import (
	"fmt"
	"os"

	"github.com/bow/domwait/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
