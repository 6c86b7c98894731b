package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/Duncaen/vis-go/text"
)

// historyFile returns the path to the REPL's readline history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".visbuf_history")
}

var replCommands = []string{
	"insert", "delete", "del", "undo", "redo", "earlier", "later",
	"snapshot", "snap", "restore", "mark", "unmark", "marks", "goto",
	"save", "saveas", "print", "size", "lines", "line", "linepos",
	"modified", "help", "exit", "quit", "q",
}

func runREPL(s *session) int {
	s.marks = map[string]text.Mark{}

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(prefix string) []string {
		var out []string

		for _, c := range replCommands {
			if strings.HasPrefix(c, prefix) {
				out = append(out, c)
			}
		}

		return out
	})

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(s.out, "visbuf - editing %s (%d bytes)\n", s.path, s.tx.Size())
	fmt.Fprintln(s.out, "Type 'help' for available commands.")

	for !s.quit {
		input, err := line.Prompt("visbuf> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				break
			}

			fmt.Fprintln(s.errOut, "error:", err)

			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		dispatch(s, input)
	}

	if f, err := os.Create(historyFile()); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}

	fmt.Fprintln(s.out, "bye")

	return 0
}

// runScript replays one command per line from r, stopping at the first
// error. Used for non-interactive testing and batch edits.
func runScript(s *session, r io.Reader) int {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !dispatch(s, line) {
			return 1
		}

		if s.quit {
			break
		}
	}

	return 0
}

// dispatch runs one command line. Returns false on an error that should
// abort a script (but never during interactive use, where errors are
// just printed and the REPL keeps going).
func dispatch(s *session, line string) bool {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	var err error

	switch cmd {
	case "insert":
		err = cmdInsert(s, args)
	case "delete", "del":
		err = cmdDelete(s, args)
	case "undo":
		reportPos(s, s.tx.Undo())
	case "redo":
		reportPos(s, s.tx.Redo())
	case "earlier":
		err = cmdEarlier(s, args)
	case "later":
		err = cmdLater(s, args)
	case "snapshot", "snap":
		s.tx.Snapshot()
	case "restore":
		err = cmdRestore(s, args)
	case "mark":
		err = cmdMark(s, args)
	case "unmark":
		err = cmdUnmark(s, args)
	case "marks":
		cmdMarks(s)
	case "goto":
		err = cmdGoto(s, args)
	case "save":
		err = cmdSave(s, args)
	case "saveas":
		err = cmdSave(s, args)
	case "print":
		err = cmdPrint(s, args)
	case "size":
		fmt.Fprintln(s.out, s.tx.Size())
	case "lines":
		fmt.Fprintln(s.out, s.tx.LineCount())
	case "line":
		err = cmdLine(s, args)
	case "linepos":
		err = cmdLinePos(s, args)
	case "modified":
		fmt.Fprintln(s.out, s.tx.Modified())
	case "help", "?":
		printHelp(s.out)
	case "exit", "quit", "q":
		s.quit = true
	default:
		fmt.Fprintf(s.errOut, "unknown command: %s (type 'help')\n", cmd)

		return false
	}

	if err != nil {
		fmt.Fprintln(s.errOut, "error:", err)

		return false
	}

	return true
}

func reportPos(s *session, pos uint64) {
	if pos == ^uint64(0) {
		fmt.Fprintln(s.out, "(nothing to do)")

		return
	}

	fmt.Fprintln(s.out, pos)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  insert <pos> <text>       Insert text at byte position pos")
	fmt.Fprintln(w, "  delete <pos> <len>        Delete len bytes starting at pos")
	fmt.Fprintln(w, "  undo / redo               Step through revision history")
	fmt.Fprintln(w, "  earlier <k> / later <k>   Step k revisions at once")
	fmt.Fprintln(w, "  snapshot                  Seal the current revision")
	fmt.Fprintln(w, "  restore <RFC3339 time>    Jump to the nearest revision at that time")
	fmt.Fprintln(w, "  mark <name> <pos>         Remember pos under name")
	fmt.Fprintln(w, "  goto <name>               Print the current position of a mark")
	fmt.Fprintln(w, "  unmark <name> / marks     Forget / list marks")
	fmt.Fprintln(w, "  save / saveas <path>      Write the buffer to disk")
	fmt.Fprintln(w, "  print [pos] [len]         Print len bytes starting at pos")
	fmt.Fprintln(w, "  size / lines / modified   Report buffer stats")
	fmt.Fprintln(w, "  line <n> / linepos <pos>  Convert between line numbers and positions")
	fmt.Fprintln(w, "  help                      Show this help")
	fmt.Fprintln(w, "  exit / quit / q           Leave the REPL")
}

func parsePos(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
