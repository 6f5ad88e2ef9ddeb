// Command ircc is a minimal console IRC client, exercising the client
// engine against a real server the way Travis-Britz-irc/client.go's
// ConnectAndRun is meant to be driven.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tsavola/ircd/client"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:6667", "server address")
	nick := flag.String("nick", "guest", "nickname")
	user := flag.String("user", "guest", "username")
	realname := flag.String("realname", "Guest", "real name")
	pass := flag.String("pass", "", "server password")
	flag.Parse()

	e := client.NewEngine(*addr, *nick, *user, *realname, *pass, client.ConsoleSink{})
	if err := e.Connect(); err != nil {
		log.Fatalf("ircc: %s", err)
	}

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "/") {
				continue
			}
			input := line[1:]
			e.Enqueue(func() { handleInput(e, input) })
		}
	}()

	e.Run()
}

// handleInput implements a small set of slash commands: "/join #chan",
// "/part #chan", "/msg target text...", "/quit [reason]".
func handleInput(e *client.Engine, line string) {
	fields := strings.SplitN(line, " ", 3)
	switch strings.ToLower(fields[0]) {
	case "join":
		if len(fields) >= 2 {
			e.SendJoin(strings.Split(fields[1], ","), nil)
		}
	case "part":
		if len(fields) >= 2 {
			e.SendPart(strings.Split(fields[1], ","), "")
		}
	case "msg":
		if len(fields) >= 3 {
			e.SendPrivmsg(fields[1], fields[2])
		}
	case "quit":
		reason := ""
		if len(fields) >= 2 {
			reason = strings.Join(fields[1:], " ")
		}
		e.Quit(reason)
		os.Exit(0)
	default:
		fmt.Printf("unknown command: %s\n", fields[0])
	}
}
