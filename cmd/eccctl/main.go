/*
 * eccdrv - Subcommand CLI over the public API.
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

// eccctl is a subcommand CLI for scripted or interactive exercising of
// the full public API (spec §4.17): setcurve, mul, onoccurve, attack,
// trace, and debug (which drops into the internal/console REPL).
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	ecc "github.com/hwsec/eccdrv"
	"github.com/hwsec/eccdrv/config/configparser"
	"github.com/hwsec/eccdrv/config/eccconfig"
	"github.com/hwsec/eccdrv/internal/console"
	"github.com/hwsec/eccdrv/internal/debugfsm"
	"github.com/hwsec/eccdrv/internal/platform"
	"github.com/hwsec/eccdrv/util/hexfmt"
)

var (
	flagBase       uint64
	flagSize       int
	flagConfigFile string
)

func openDevice() (*ecc.Device, error) {
	if flagConfigFile != "" {
		if err := configparser.LoadConfigFile(flagConfigFile); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	dev := ecc.New()
	plat := platform.NewDevMem(uintptr(flagBase), flagSize)
	if err := dev.EnsureReady(plat); err != nil {
		return nil, fmt.Errorf("ensure_ready: %w", err)
	}

	if eccconfig.StagedCurve != nil {
		c := eccconfig.StagedCurve
		if err := dev.SetCurve(ecc.Curve{A: c.A, B: c.B, P: c.P, Q: c.Q}, c.NN); err != nil {
			return nil, fmt.Errorf("staged curve %s: %w", c.Name, err)
		}
	}
	if eccconfig.AttackLevel >= 0 {
		if err := dev.AttackSetLevel(eccconfig.AttackLevel); err != nil {
			return nil, fmt.Errorf("staged attack level: %w", err)
		}
	}
	for _, bp := range eccconfig.StagedDebug.Breakpoints {
		dbp := debugfsm.Breakpoint{ID: bp.ID, Addr: bp.Addr, BitPos: bp.BitPos, FSMState: bp.FSMState, Enable: true}
		if err := dev.SetBreakpoint(dbp); err != nil {
			return nil, fmt.Errorf("staged breakpoint %d: %w", bp.ID, err)
		}
	}
	if eccconfig.StagedDebug.Trace {
		console.SetTraceEnabled(true)
	}
	return dev, nil
}

func decodeHexArg(name, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%s: not hex: %w", name, err)
	}
	return b, nil
}

func main() {
	root := &cobra.Command{
		Use:   "eccctl",
		Short: "Exercise the ECC accelerator host driver from the command line",
	}
	root.PersistentFlags().Uint64Var(&flagBase, "base", 0, "Physical MMIO base address")
	root.PersistentFlags().IntVar(&flagSize, "size", 4096, "MMIO window size in bytes")
	root.PersistentFlags().StringVar(&flagConfigFile, "config", "", "Config file with [CURVE]/[ATTACK]/[DEBUG] sections")

	var curveA, curveB, curveP, curveQ string
	var curveNN uint32
	setCurveCmd := &cobra.Command{
		Use:   "setcurve",
		Short: "Load curve parameters a, b, p, q onto the IP",
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := openDevice()
			if err != nil {
				return err
			}
			a, err := decodeHexArg("a", curveA)
			if err != nil {
				return err
			}
			b, err := decodeHexArg("b", curveB)
			if err != nil {
				return err
			}
			p, err := decodeHexArg("p", curveP)
			if err != nil {
				return err
			}
			q, err := decodeHexArg("q", curveQ)
			if err != nil {
				return err
			}
			return dev.SetCurve(ecc.Curve{A: a, B: b, P: p, Q: q}, curveNN)
		},
	}
	setCurveCmd.Flags().StringVar(&curveA, "a", "", "Curve parameter a, hex")
	setCurveCmd.Flags().StringVar(&curveB, "b", "", "Curve parameter b, hex")
	setCurveCmd.Flags().StringVar(&curveP, "p", "", "Curve prime p, hex")
	setCurveCmd.Flags().StringVar(&curveQ, "q", "", "Curve order q, hex")
	setCurveCmd.Flags().Uint32Var(&curveNN, "nn", 256, "Curve bit size")

	var mulX, mulY, mulK string
	mulCmd := &cobra.Command{
		Use:   "mul",
		Short: "Compute [k]P via the token-masked scalar multiply",
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := openDevice()
			if err != nil {
				return err
			}
			x, err := decodeHexArg("x", mulX)
			if err != nil {
				return err
			}
			y, err := decodeHexArg("y", mulY)
			if err != nil {
				return err
			}
			k, err := decodeHexArg("k", mulK)
			if err != nil {
				return err
			}
			rx, ry, err := dev.Mul(x, y, k)
			if err != nil {
				return err
			}
			fmt.Printf("x: %s\ny: %s\n", hexfmt.Bytes(rx), hexfmt.Bytes(ry))
			return nil
		},
	}
	mulCmd.Flags().StringVar(&mulX, "x", "", "Point x, hex")
	mulCmd.Flags().StringVar(&mulY, "y", "", "Point y, hex")
	mulCmd.Flags().StringVar(&mulK, "k", "", "Scalar, hex")

	var onX, onY string
	onCurveCmd := &cobra.Command{
		Use:   "onoccurve",
		Short: "Test whether (x, y) satisfies the active curve equation",
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := openDevice()
			if err != nil {
				return err
			}
			x, err := decodeHexArg("x", onX)
			if err != nil {
				return err
			}
			y, err := decodeHexArg("y", onY)
			if err != nil {
				return err
			}
			ok, err := dev.IsOnCurve(x, y)
			if err != nil {
				return err
			}
			fmt.Println(ok)
			return nil
		},
	}
	onCurveCmd.Flags().StringVar(&onX, "x", "", "Point x, hex")
	onCurveCmd.Flags().StringVar(&onY, "y", "", "Point y, hex")

	attackCmd := &cobra.Command{
		Use:   "attack [level]",
		Short: "Apply an attack-level preset (0-3)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("level must be 0-3: %w", err)
			}
			dev, err := openDevice()
			if err != nil {
				return err
			}
			return dev.AttackSetLevel(level)
		},
	}

	var traceOn bool
	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "Report the IP's current debug FSM state",
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := openDevice()
			if err != nil {
				return err
			}
			if traceOn {
				fmt.Println("state:", dev.DebugState())
			}
			return nil
		},
	}
	traceCmd.Flags().BoolVar(&traceOn, "on", true, "Print the current debug FSM state")

	debugCmd := &cobra.Command{
		Use:   "debug",
		Short: "Drop into the interactive debug console",
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := openDevice()
			if err != nil {
				return err
			}
			console.Run(dev)
			return nil
		},
	}

	root.AddCommand(setCurveCmd, mulCmd, onCurveCmd, attackCmd, traceCmd, debugCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
