// Package logger keeps a single central log for the whole program. Entries are
// tagged lines ("tag: detail"). Identical consecutive entries are collapsed
// into one entry with a repeat count, so that a condition reported from a
// tight loop doesn't flush everything else out of the log.
package logger

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Maximum number of entries kept by the central log.
const maxEntries = 256

// Entry is a single line in the log.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	repeated  int
}

func (e Entry) String() string {
	s := strings.Builder{}
	fmt.Fprintf(&s, "%s: %s", e.Tag, e.Detail)
	if e.repeated > 0 {
		fmt.Fprintf(&s, " (repeat x%d)", e.repeated+1)
	}
	s.WriteString("\n")
	return s.String()
}

type logger struct {
	lock    sync.Mutex
	entries []Entry
	echo    io.Writer
}

var central = &logger{}

func (l *logger) log(tag, detail string) {
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	l.lock.Lock()
	defer l.lock.Unlock()

	var e *Entry
	if n := len(l.entries); n > 0 && l.entries[n-1].Tag == tag && l.entries[n-1].Detail == detail {
		e = &l.entries[n-1]
		e.repeated++
		e.Timestamp = time.Now()
	} else {
		l.entries = append(l.entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})
		if len(l.entries) > maxEntries {
			l.entries = l.entries[len(l.entries)-maxEntries:]
		}
		e = &l.entries[len(l.entries)-1]
	}

	if l.echo != nil {
		io.WriteString(l.echo, e.String())
	}
}

// Log adds an entry to the central log.
func Log(tag, detail string) {
	central.log(tag, detail)
}

// Logf adds a formatted entry to the central log.
func Logf(tag, format string, args ...interface{}) {
	central.log(tag, fmt.Sprintf(format, args...))
}

// Clear removes all entries.
func Clear() {
	central.lock.Lock()
	defer central.lock.Unlock()
	central.entries = central.entries[:0]
}

// Write the whole log to output.
func Write(output io.Writer) {
	Tail(output, maxEntries)
}

// Tail writes the last number entries to output.
func Tail(output io.Writer, number int) {
	central.lock.Lock()
	defer central.lock.Unlock()
	if number > len(central.entries) {
		number = len(central.entries)
	}
	for _, e := range central.entries[len(central.entries)-number:] {
		io.WriteString(output, e.String())
	}
}

// SetEcho prints every new entry to output as well. A nil writer turns echoing
// off.
func SetEcho(output io.Writer) {
	central.lock.Lock()
	defer central.lock.Unlock()
	central.echo = output
}

// Panicf reports a violated precondition. The location of the caller is added
// to the log before panicking, like the halt screen of the firmware this grew
// out of.
func Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	location := "unknown location"
	if pc, file, line, ok := runtime.Caller(1); ok {
		location = fmt.Sprintf("%s:%d", file, line)
		if fn := runtime.FuncForPC(pc); fn != nil {
			location += " (" + fn.Name() + ")"
		}
	}
	central.log("halt", msg+" at "+location)
	panic(msg)
}
