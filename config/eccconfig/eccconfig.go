/*
 * eccdrv - Config file sections for curve, attack level, and debug setup.
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

// Package eccconfig registers the [CURVE], [ATTACK], and [DEBUG]
// config-file sections in the configparser's section-registration
// style. Loading only stages values; cmd/eccctl applies the staged
// config to a live Device after ensure_ready, since no
// Device exists yet at config-load time.
package eccconfig

import (
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	config "github.com/hwsec/eccdrv/config/configparser"
)

// Curve is the staged [CURVE] section: a curve name plus its four
// parameter buffers and bit width, ready for ecc.SetCurve.
type Curve struct {
	Name string
	A, B, P, Q []byte
	NN         uint32
}

// Breakpoint is one staged [DEBUG] BREAK line.
type Breakpoint struct {
	ID, Addr, BitPos, FSMState uint32
}

// Debug is the staged [DEBUG] section.
type Debug struct {
	Trace       bool
	Breakpoints []Breakpoint
}

var (
	// StagedCurve, AttackLevel and StagedDebug hold whatever
	// [CURVE]/[ATTACK]/[DEBUG] sections were found by the last
	// LoadConfigFile call; a nil StagedCurve, an AttackLevel of -1 and a
	// zero StagedDebug mean the section was absent.
	StagedCurve  *Curve
	AttackLevel  = -1
	StagedDebug  Debug
)

// knownCurves are the named curves CURVE <name> can select without
// spelling out raw parameters. Values are public domain curve
// constants, not secrets.
var knownCurves = map[string]Curve{
	"SECP256K1": {
		Name: "secp256k1",
		A:    mustHex("00000000000000000000000000000000000000000000000000000000000000"),
		B:    mustHex("00000000000000000000000000000000000000000000000000000000000007"),
		P:    mustHex("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFC2F"),
		Q:    mustHex("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141"),
		NN:   256,
	},
	"P256": {
		Name: "p256",
		A:    mustHex("FFFFFFFF00000001000000000000000000000000FFFFFFFFFFFFFFFFFFFFFFFC"),
		B:    mustHex("5AC635D8AA3A93E7B3EBBD55769886BC651D06B0CC53B0F63BCE3C3E27D2604B"),
		P:    mustHex("FFFFFFFF00000001000000000000000000000000FFFFFFFFFFFFFFFFFFFFFFFF"),
		Q:    mustHex("FFFFFFFF00000000FFFFFFFFFFFFFFFFBCE6FAADA7179E84F3B9CAC2FC632551"),
		NN:   256,
	},
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("eccconfig: bad built-in curve constant: " + err.Error())
	}
	return b
}

func init() {
	config.RegisterModel("CURVE", config.TypeOptions, setCurve)
	config.RegisterModel("ATTACK", config.TypeOptions, setAttack)
	config.RegisterModel("DEBUG", config.TypeOptions, setDebug)
}

// findOption returns the value after = for name, or "" if absent.
func findOption(options []config.Option, name string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(opt.Name, name) {
			return opt.EqualOpt, true
		}
	}
	return "", false
}

// setCurve implements CURVE <name> [a=<hex>] [b=<hex>] [p=<hex>] [q=<hex>] [nn=<bits>].
func setCurve(_ uint16, name string, options []config.Option) error {
	base, ok := knownCurves[strings.ToUpper(name)]
	if !ok {
		if len(options) == 0 {
			return errors.New("unknown curve: " + name)
		}
		base = Curve{Name: name}
	}

	if v, ok := findOption(options, "a"); ok {
		b, err := hex.DecodeString(v)
		if err != nil {
			return errors.New("curve option a: not hex: " + v)
		}
		base.A = b
	}
	if v, ok := findOption(options, "b"); ok {
		b, err := hex.DecodeString(v)
		if err != nil {
			return errors.New("curve option b: not hex: " + v)
		}
		base.B = b
	}
	if v, ok := findOption(options, "p"); ok {
		b, err := hex.DecodeString(v)
		if err != nil {
			return errors.New("curve option p: not hex: " + v)
		}
		base.P = b
	}
	if v, ok := findOption(options, "q"); ok {
		b, err := hex.DecodeString(v)
		if err != nil {
			return errors.New("curve option q: not hex: " + v)
		}
		base.Q = b
	}
	if v, ok := findOption(options, "nn"); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errors.New("curve option nn: not a number: " + v)
		}
		base.NN = uint32(n)
	}

	if base.A == nil || base.B == nil || base.P == nil || base.Q == nil || base.NN == 0 {
		return errors.New("curve " + name + " missing a/b/p/q/nn")
	}

	base.Name = name
	StagedCurve = &base
	return nil
}

// setAttack implements ATTACK <level 0-3>.
func setAttack(_ uint16, level string, _ []config.Option) error {
	n, err := strconv.Atoi(level)
	if err != nil || n < 0 || n > 3 {
		return errors.New("attack level must be 0-3: " + level)
	}
	AttackLevel = n
	return nil
}

// setDebug implements DEBUG TRACE on|off and
// DEBUG BREAK id=<n> addr=<hex> [bit=<n>] [state=<n>].
func setDebug(_ uint16, keyword string, options []config.Option) error {
	switch strings.ToUpper(keyword) {
	case "TRACE":
		if len(options) == 0 {
			return errors.New("debug trace requires on or off")
		}
		switch strings.ToLower(options[0].Name) {
		case "on":
			StagedDebug.Trace = true
		case "off":
			StagedDebug.Trace = false
		default:
			return errors.New("debug trace option must be on or off: " + options[0].Name)
		}

	case "BREAK":
		// Options are named (id=, addr=, bit=, state=) since the
		// underlying parser requires every bare option token to start
		// with a letter (config/configparser getName).
		idStr, ok := findOption(options, "id")
		if !ok {
			return errors.New("debug break requires id=")
		}
		addrStr, ok := findOption(options, "addr")
		if !ok {
			return errors.New("debug break requires addr=")
		}
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			return errors.New("debug break id must be a number: " + idStr)
		}
		addr, err := strconv.ParseUint(addrStr, 16, 32)
		if err != nil {
			return errors.New("debug break address must be hex: " + addrStr)
		}
		bp := Breakpoint{ID: uint32(id), Addr: uint32(addr), FSMState: 0xF}
		if v, ok := findOption(options, "bit"); ok {
			bit, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return errors.New("debug break bit must be a number: " + v)
			}
			bp.BitPos = uint32(bit)
		}
		if v, ok := findOption(options, "state"); ok {
			state, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				return errors.New("debug break state must be a number: " + v)
			}
			bp.FSMState = uint32(state)
		}
		StagedDebug.Breakpoints = append(StagedDebug.Breakpoints, bp)

	default:
		return errors.New("unknown debug keyword: " + keyword)
	}
	return nil
}
