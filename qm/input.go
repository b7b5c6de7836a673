/*
 * input.go, part of prirun.
 *
 *
 * Copyright 2024 prirun contributors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package qm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

//Markers for the geometry block in Priroda inputs.
const (
	MoleculeBegin = "$molecule"
	MoleculeEnd   = "$end"
)

//DefaultSteps is the optimization step budget assumed when the input
//has no steps= directive.
const DefaultSteps = 4

//Slot names one of the insertion points of a Template.
type Slot int

const (
	NoSlot Slot = iota
	TaskSlot
	VecSlot
	StepsSlot
)

//directives maps each slot to the input keyword whose value it replaces.
var directives = []struct {
	key  string
	slot Slot
}{
	{"task=", TaskSlot},
	{"save=", VecSlot},
	{"steps=", StepsSlot},
}

//Flags rewritten in the template so that every run after the first
//reads the restart vector and does not mix orbitals.
var rewrites = []struct{ old, new string }{
	{"read=0", "read=1"},
	{"Mix=1", "Mix=0"},
}

type segment struct {
	text string
	slot Slot
}

//Template holds the lines of a Priroda input that come before the
//molecule block, with the task, restart vector and step count values
//cut out into named slots.
type Template struct {
	lines [][]segment
	found [StepsSlot + 1]bool
}

//Values fills the slots of a Template.
type Values struct {
	Task  Task
	Vec   string
	Steps int
}

//Has returns true if the slot s was found when parsing the template.
func (T *Template) Has(s Slot) bool {
	if s <= NoSlot || s > StepsSlot {
		return false
	}
	return T.found[s]
}

//Len returns the number of lines in the template.
func (T *Template) Len() int { return len(T.lines) }

//Render returns the template text with the slots filled from v.
func (T *Template) Render(v Values) string {
	var b strings.Builder
	for _, line := range T.lines {
		for _, seg := range line {
			switch seg.slot {
			case TaskSlot:
				b.WriteString(v.Task.String())
			case VecSlot:
				b.WriteString(v.Vec)
			case StepsSlot:
				b.WriteString(strconv.Itoa(v.Steps))
			default:
				b.WriteString(seg.text)
			}
		}
	}
	return b.String()
}

//Input contains everything recovered from an initial Priroda input file.
type Input struct {
	Path     string //the file parsed
	Template *Template
	Molecule []string //the molecule block, markers included
	Task     Task
	Steps    int    //optimization step budget
	Vec      string //restart vector path, as written in save=
	VecBase  string //file name of Vec without extension
	Name     string //run name, used to build the names of new files
	Dir      string //directory where new files are written
	Step     int    //starting step
}

var stepInName = regexp.MustCompile(`(.+)_([0-9]+)_`)

//ReadInput parses the Priroda input in filename. The run name and the
//starting step come from the file name: "water_03_Opt.in" starts at step 3
//with the name "water", anything else starts at step 1.
func ReadInput(filename string) (*Input, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, Error{ErrCantInput, Priroda, filename, err.Error(), []string{"os.Open", "ReadInput"}, true}
	}
	defer f.Close()
	in, err := ParseInput(f)
	if err != nil {
		var e Error
		if errors.As(err, &e) {
			e.inputname = filename
			err = e
		}
		return nil, errDecorate(err, "ReadInput")
	}
	in.Path = filename
	in.Dir = filepath.Dir(filename)
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	in.Name = name
	in.Step = 1
	if m := stepInName.FindStringSubmatch(name); m != nil {
		in.Name = m[1]
		in.Step, _ = strconv.Atoi(m[2]) //the regexp guarantees digits
	}
	return in, nil
}

//ParseInput reads a Priroda input from r. Reading stops at the end of the
//molecule block; anything after it is discarded.
func ParseInput(r io.Reader) (*Input, error) {
	in := &Input{Template: new(Template), Steps: DefaultSteps}
	var taskname string
	var inMolecule bool
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, Error{ErrCantInput, Priroda, "", err.Error(), []string{"ParseInput"}, true}
		}
		if line == "" && err == io.EOF {
			break
		}
		if inMolecule {
			in.Molecule = append(in.Molecule, line)
			if strings.Contains(line, MoleculeEnd) {
				break
			}
		} else if strings.Contains(line, MoleculeBegin) {
			inMolecule = true
			in.Molecule = append(in.Molecule, line)
		} else {
			segs, values, perr := in.Template.parseLine(line)
			if perr != nil {
				return nil, errDecorate(perr, "ParseInput")
			}
			in.Template.lines = append(in.Template.lines, segs)
			if v, ok := values[TaskSlot]; ok {
				taskname = v
			}
			if v, ok := values[VecSlot]; ok {
				in.Vec = v
				base := filepath.Base(v)
				in.VecBase = strings.TrimSuffix(base, filepath.Ext(base))
			}
			if v, ok := values[StepsSlot]; ok {
				in.Steps, _ = strconv.Atoi(v) //checked in parseLine
			}
		}
		if err == io.EOF {
			break
		}
	}
	if !in.Template.Has(TaskSlot) {
		return nil, Error{ErrWrongTask, Priroda, "", "no task= directive before the molecule block", []string{"ParseInput"}, true}
	}
	task, err := ParseTask(taskname)
	if err != nil {
		return nil, errDecorate(err, "ParseInput")
	}
	in.Task = task
	return in, nil
}

//parseLine applies the flag rewrites to line and splits it into segments,
//cutting out the values of the directives not yet found in the template.
//It returns the segments and the values cut, by slot.
func (T *Template) parseLine(line string) ([]segment, map[Slot]string, error) {
	for _, r := range rewrites {
		line = strings.ReplaceAll(line, r.old, r.new)
	}
	values := make(map[Slot]string)
	type span struct {
		start, end int
		slot       Slot
	}
	spans := make([]span, 0, len(directives))
	for _, d := range directives {
		if T.found[d.slot] {
			continue
		}
		start, end, ok := directiveValue(line, d.key)
		if !ok {
			continue
		}
		v := line[start:end]
		if d.slot == StepsSlot {
			if _, err := strconv.Atoi(v); err != nil {
				return nil, nil, Error{ErrCantInput, Priroda, "", fmt.Sprintf("bad step count %q", v), []string{"parseLine"}, true}
			}
		}
		T.found[d.slot] = true
		values[d.slot] = v
		spans = append(spans, span{start, end, d.slot})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	segs := make([]segment, 0, 2*len(spans)+1)
	prev := 0
	for _, s := range spans {
		if s.start < prev {
			//overlapping values can only come from a malformed line, leave it alone.
			continue
		}
		segs = append(segs, segment{text: line[prev:s.start]})
		segs = append(segs, segment{text: line[s.start:s.end], slot: s.slot})
		prev = s.end
	}
	segs = append(segs, segment{text: line[prev:]})
	return segs, values, nil
}

//directiveValue finds key in line as a whole word and returns the bounds
//of the value that follows it, up to the next blank. The value must not
//be empty.
func directiveValue(line, key string) (int, int, bool) {
	from := 0
	for {
		i := strings.Index(line[from:], key)
		if i < 0 {
			return 0, 0, false
		}
		i += from
		from = i + len(key)
		if i > 0 && isWordByte(line[i-1]) {
			continue
		}
		end := from
		for end < len(line) && !isBlank(line[end]) {
			end++
		}
		if end == from {
			continue
		}
		return from, end, true
	}
}

func isWordByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
