// Command vnwords prints the Vietnamese reading of each amount given as
// an argument, or of each line on stdin when there are no arguments.
//
//	vnwords 1500000 -50 105
//	Một triệu năm trăm nghìn đồng
//	Âm năm mươi đồng
//	Một trăm lẻ năm đồng
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"finflow/internal/vnwords"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run reads every amount and returns 1 if any of them failed. Arguments
// are not parsed as flags so negative amounts pass through.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	code := 0
	read := func(s string) {
		words, err := vnwords.FromString(s)
		if err != nil {
			fmt.Fprintf(stderr, "vnwords: %s: %v\n", s, err)
			code = 1
			return
		}
		fmt.Fprintln(stdout, words)
	}

	if len(args) > 0 {
		for _, a := range args {
			read(a)
		}
		return code
	}

	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		read(line)
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(stderr, "vnwords: read stdin: %v\n", err)
		return 1
	}
	return code
}
