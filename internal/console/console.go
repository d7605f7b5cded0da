/*
 * eccdrv - Interactive debug console.
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

// Package console is a line-editing REPL over the driver's debug and
// attack surface, reached from "eccctl debug" (spec §4.15). Command
// dispatch is table-driven, mirroring the teacher's command/parser
// shape, so new debug commands are additions to cmdList rather than
// new switch arms.
package console

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/peterh/liner"

	ecc "github.com/hwsec/eccdrv"
	"github.com/hwsec/eccdrv/internal/debugfsm"
	"github.com/hwsec/eccdrv/util/hexfmt"
)

type cmd struct {
	name    string
	min     int
	process func(*cmdLine, *ecc.Device) (bool, error)
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "halt", min: 4, process: cmdHalt},
	{name: "resume", min: 2, process: cmdResume},
	{name: "step", min: 2, process: cmdStep},
	{name: "break", min: 3, process: cmdBreak},
	{name: "rmbreak", min: 3, process: cmdRmBreak},
	{name: "patch", min: 2, process: cmdPatch},
	{name: "trig", min: 4, process: cmdTrig},
	{name: "trigup", min: 6, process: cmdTrigUp},
	{name: "trigdown", min: 6, process: cmdTrigDown},
	{name: "attack", min: 2, process: cmdAttack},
	{name: "examine", min: 2, process: cmdExamine},
	{name: "curve", min: 2, process: cmdCurve},
	{name: "trace", min: 2, process: cmdTrace},
	{name: "quit", min: 4, process: cmdQuit},
}

var traceEnabled bool

// SetTraceEnabled lets callers preload the console's trace flag, e.g.
// from a staged [DEBUG] TRACE on config section.
func SetTraceEnabled(enabled bool) { traceEnabled = enabled }

// Run starts the console REPL against dev until "quit" or EOF.
func Run(dev *ecc.Device) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("ecc> ")
		if err == nil {
			line.AppendHistory(input)
			quit, err := ProcessCommand(input, dev)
			if err != nil {
				fmt.Println("Error: " + err.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		slog.Error("console: error reading line", "error", err)
		return
	}
}

// ProcessCommand runs one command line against dev, returning true when
// the console should exit.
func ProcessCommand(commandLine string, dev *ecc.Device) (bool, error) {
	l := cmdLine{line: commandLine}
	name := l.getWord()

	match := matchList(name)
	if len(match) == 0 {
		if name == "" {
			return false, nil
		}
		return false, errors.New("command not found: " + name)
	}
	if len(match) > 1 {
		return false, errors.New("ambiguous command: " + name)
	}

	quit, err := match[0].process(&l, dev)
	if err == nil && traceEnabled && !quit {
		fmt.Println("state: " + dev.DebugState().String())
	}
	return quit, err
}

func matchCommand(c cmd, name string) bool {
	if len(name) > len(c.name) {
		return false
	}
	for i := range name {
		if name[i] != c.name[i] {
			return false
		}
	}
	return len(name) >= c.min
}

func matchList(name string) []cmd {
	if name == "" {
		return nil
	}
	var out []cmd
	for _, c := range cmdList {
		if matchCommand(c, name) {
			out = append(out, c)
		}
	}
	return out
}

func (l *cmdLine) skipSpace() {
	for l.pos < len(l.line) && unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
}

func (l *cmdLine) isEOL() bool { return l.pos >= len(l.line) }

func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.line) && !unicode.IsSpace(rune(l.line[l.pos])) {
		l.pos++
	}
	return strings.ToLower(l.line[start:l.pos])
}

func (l *cmdLine) getWords() []string {
	var words []string
	for {
		w := l.getWord()
		if w == "" {
			break
		}
		words = append(words, w)
	}
	return words
}

func parseUint(s string, base int, bits int) (uint64, error) {
	return strconv.ParseUint(s, base, bits)
}

func cmdHalt(_ *cmdLine, dev *ecc.Device) (bool, error) { return false, dev.Halt() }

func cmdResume(_ *cmdLine, dev *ecc.Device) (bool, error) { return false, dev.Resume() }

func cmdStep(l *cmdLine, dev *ecc.Device) (bool, error) {
	w := l.getWord()
	if w == "" {
		return false, dev.SingleStep()
	}
	n, err := parseUint(w, 10, 32)
	if err != nil {
		return false, errors.New("step count must be a number: " + w)
	}
	return false, dev.RunOpcodes(uint32(n))
}

// break <id> <addr> [bit] [state]
func cmdBreak(l *cmdLine, dev *ecc.Device) (bool, error) {
	words := l.getWords()
	if len(words) < 2 {
		return false, errors.New("break requires id and address")
	}
	id, err := parseUint(words[0], 10, 32)
	if err != nil {
		return false, errors.New("break id must be a number: " + words[0])
	}
	addr, err := parseUint(words[1], 16, 32)
	if err != nil {
		return false, errors.New("break address must be hex: " + words[1])
	}
	bp := debugfsm.Breakpoint{ID: uint32(id), Addr: uint32(addr), FSMState: debugfsm.StateAny, Enable: true}
	if len(words) > 2 {
		bit, err := parseUint(words[2], 10, 32)
		if err != nil {
			return false, errors.New("break bit must be a number: " + words[2])
		}
		bp.BitPos = uint32(bit)
	}
	if len(words) > 3 {
		state, err := parseUint(words[3], 10, 32)
		if err != nil {
			return false, errors.New("break state must be a number: " + words[3])
		}
		bp.FSMState = uint32(state)
	}
	return false, dev.SetBreakpoint(bp)
}

func cmdRmBreak(l *cmdLine, dev *ecc.Device) (bool, error) {
	w := l.getWord()
	id, err := parseUint(w, 10, 32)
	if err != nil {
		return false, errors.New("rmbreak requires a breakpoint id: " + w)
	}
	return false, dev.RemoveBreakpoint(uint32(id))
}

// patch <addr> <msb> [lsb]
func cmdPatch(l *cmdLine, dev *ecc.Device) (bool, error) {
	words := l.getWords()
	if len(words) < 2 {
		return false, errors.New("patch requires address and at least one word")
	}
	addr, err := parseUint(words[0], 16, 32)
	if err != nil {
		return false, errors.New("patch address must be hex: " + words[0])
	}
	msb, err := parseUint(words[1], 16, 32)
	if err != nil {
		return false, errors.New("patch msb must be hex: " + words[1])
	}
	if len(words) == 2 {
		return false, dev.PatchOneOpcode(uint32(addr), uint32(msb), 0, 1)
	}
	lsb, err := parseUint(words[2], 16, 32)
	if err != nil {
		return false, errors.New("patch lsb must be hex: " + words[2])
	}
	return false, dev.PatchOneOpcode(uint32(addr), uint32(msb), uint32(lsb), 2)
}

func cmdTrig(l *cmdLine, dev *ecc.Device) (bool, error) {
	switch l.getWord() {
	case "arm":
		dev.ArmTrigger()
	case "disarm":
		dev.DisarmTrigger()
	default:
		return false, errors.New("trig requires arm or disarm")
	}
	return false, nil
}

func cmdTrigUp(l *cmdLine, dev *ecc.Device) (bool, error) {
	w := l.getWord()
	t, err := parseUint(w, 10, 32)
	if err != nil {
		return false, errors.New("trigup requires a threshold: " + w)
	}
	dev.SetTriggerUp(uint32(t))
	return false, nil
}

func cmdTrigDown(l *cmdLine, dev *ecc.Device) (bool, error) {
	w := l.getWord()
	t, err := parseUint(w, 10, 32)
	if err != nil {
		return false, errors.New("trigdown requires a threshold: " + w)
	}
	dev.SetTriggerDown(uint32(t))
	return false, nil
}

func cmdAttack(l *cmdLine, dev *ecc.Device) (bool, error) {
	w := l.getWord()
	level, err := strconv.Atoi(w)
	if err != nil || level < 0 || level > 3 {
		return false, errors.New("attack requires a level 0-3: " + w)
	}
	return false, dev.AttackSetLevel(level)
}

func cmdExamine(l *cmdLine, dev *ecc.Device) (bool, error) {
	name := l.getWord()
	if name == "" {
		return false, errors.New("examine requires a slot name")
	}
	value, err := dev.ExamineSlot(name)
	if err != nil {
		return false, err
	}
	fmt.Println(name + ": " + hexfmt.Bytes(value))
	return false, nil
}

func cmdCurve(l *cmdLine, dev *ecc.Device) (bool, error) {
	name := l.getWord()
	if name == "" {
		return false, errors.New("curve requires a name")
	}
	fmt.Println("curve selection is staged by config/eccconfig; use eccctl setcurve to load " + name)
	return false, nil
}

func cmdTrace(l *cmdLine, _ *ecc.Device) (bool, error) {
	switch l.getWord() {
	case "on":
		traceEnabled = true
	case "off":
		traceEnabled = false
	default:
		return false, errors.New("trace requires on or off")
	}
	return false, nil
}

func cmdQuit(_ *cmdLine, _ *ecc.Device) (bool, error) { return true, nil }
