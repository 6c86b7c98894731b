package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Duncaen/vis-go/text"
)

func cmdInsert(s *session, args []string) error {
	if len(args) < 2 {
		return errUsage("insert <pos> <text>")
	}

	pos, err := parsePos(args[0])
	if err != nil {
		return err
	}

	data := strings.Join(args[1:], " ")
	if err := s.tx.Insert(pos, []byte(data)); err != nil {
		return err
	}

	fmt.Fprintln(s.out, pos+uint64(len(data)))

	return nil
}

func cmdDelete(s *session, args []string) error {
	if len(args) < 2 {
		return errUsage("delete <pos> <len>")
	}

	pos, err := parsePos(args[0])
	if err != nil {
		return err
	}

	n, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}

	if err := s.tx.Delete(pos, n); err != nil {
		return err
	}

	fmt.Fprintln(s.out, pos)

	return nil
}

func cmdEarlier(s *session, args []string) error {
	k, err := stepCount(args)
	if err != nil {
		return err
	}

	reportPos(s, s.tx.Earlier(k))

	return nil
}

func cmdLater(s *session, args []string) error {
	k, err := stepCount(args)
	if err != nil {
		return err
	}

	reportPos(s, s.tx.Later(k))

	return nil
}

func stepCount(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	return strconv.Atoi(args[0])
}

func cmdRestore(s *session, args []string) error {
	if len(args) != 1 {
		return errUsage("restore <RFC3339 time>")
	}

	at, err := parseRFC3339(args[0])
	if err != nil {
		return err
	}

	reportPos(s, s.tx.Restore(at))

	return nil
}

func cmdMark(s *session, args []string) error {
	if len(args) != 2 {
		return errUsage("mark <name> <pos>")
	}

	pos, err := parsePos(args[1])
	if err != nil {
		return err
	}

	m, err := s.tx.MarkSet(pos)
	if err != nil {
		return err
	}

	s.marks[args[0]] = m

	return nil
}

func cmdUnmark(s *session, args []string) error {
	if len(args) != 1 {
		return errUsage("unmark <name>")
	}

	delete(s.marks, args[0])

	return nil
}

func cmdMarks(s *session) {
	if len(s.marks) == 0 {
		fmt.Fprintln(s.out, "(no marks)")

		return
	}

	for name, m := range s.marks {
		fmt.Fprintf(s.out, "%s -> %d\n", name, s.tx.MarkGet(m))
	}
}

func cmdGoto(s *session, args []string) error {
	if len(args) != 1 {
		return errUsage("goto <name>")
	}

	m, ok := s.marks[args[0]]
	if !ok {
		return fmt.Errorf("no such mark: %s", args[0])
	}

	reportPos(s, s.tx.MarkGet(m))

	return nil
}

func cmdSave(s *session, args []string) error {
	path := s.path
	if len(args) == 1 {
		path = args[0]
	}

	h, err := s.tx.Begin(path, s.method)
	if err != nil {
		return err
	}

	if _, err := h.WriteRange(text.Range{Start: 0, End: s.tx.Size()}); err != nil {
		_ = h.Cancel()

		return err
	}

	if err := h.Commit(); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "saved %d bytes to %s\n", s.tx.Size(), path)

	return nil
}

func cmdPrint(s *session, args []string) error {
	start := uint64(0)
	length := int(s.tx.Size())

	if len(args) >= 1 {
		p, err := parsePos(args[0])
		if err != nil {
			return err
		}

		start = p
	}

	if len(args) >= 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}

		length = n
	}

	data, err := s.tx.BytesGet(start, length)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, string(data))

	return nil
}

func cmdLine(s *session, args []string) error {
	if len(args) != 1 {
		return errUsage("line <n>")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}

	pos, err := s.tx.PosByLine(n)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, pos)

	return nil
}

func cmdLinePos(s *session, args []string) error {
	if len(args) != 1 {
		return errUsage("linepos <pos>")
	}

	pos, err := parsePos(args[0])
	if err != nil {
		return err
	}

	n, err := s.tx.LineByPos(pos)
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, n)

	return nil
}

type usageError string

func (e usageError) Error() string { return "usage: " + string(e) }

func errUsage(s string) error { return usageError(s) }
