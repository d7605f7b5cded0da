/*
 * eccdrv - Minimal bring-up probe.
 *
 * Copyright 2026, eccdrv contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// eccprobe is the smallest possible "is the IP alive" check: bring the
// device up via ensure_ready and print its capabilities (spec §4.17).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	getopt "github.com/pborman/getopt/v2"

	ecc "github.com/hwsec/eccdrv"
	"github.com/hwsec/eccdrv/internal/platform"
	"github.com/hwsec/eccdrv/util/logger"
)

func main() {
	optBase := getopt.StringLong("base", 'b', "0x0", "Physical MMIO base address")
	optSize := getopt.IntLong("size", 's', 4096, "MMIO window size in bytes")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	log := slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, false))
	slog.SetDefault(log)

	base, err := strconv.ParseUint(*optBase, 0, 64)
	if err != nil {
		log.Error("invalid --base", "value", *optBase, "error", err)
		os.Exit(1)
	}

	dev := ecc.New()
	plat := platform.NewDevMem(uintptr(base), *optSize)
	if err := dev.EnsureReady(plat); err != nil {
		log.Error("ensure_ready failed", "error", err)
		os.Exit(1)
	}

	caps := dev.Capabilities()
	ver := dev.GetVersion()
	fmt.Printf("eccprobe: IP alive, version %d.%d.%d\n", ver.Major, ver.Minor, ver.Patch)
	fmt.Printf("  secure build:   %v\n", caps.SecureBuild)
	fmt.Printf("  shuffle:        %v\n", caps.ShuffleSupport)
	fmt.Printf("  dynamic NN:     %v\n", caps.DynamicNN)
	fmt.Printf("  wire64:         %v\n", caps.Wire64)
	fmt.Printf("  nn max:         %d\n", caps.NNMax)
}
