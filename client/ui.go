package client

import "fmt"

// ConsoleSink is a minimal Sink implementation that prints events to
// stdout, used by cmd/ircc. It's intentionally thin; a richer client
// would swap this for a curses or GUI sink without touching Engine.
type ConsoleSink struct{}

func (ConsoleSink) OnConnect() {
	fmt.Println("* connected")
}

func (ConsoleSink) OnMessage(from, target, text string, isNotice bool) {
	verb := "PRIVMSG"
	if isNotice {
		verb = "NOTICE"
	}
	fmt.Printf("<%s> %s %s: %s\n", from, verb, target, text)
}

func (ConsoleSink) OnJoin(nick, channel string) {
	fmt.Printf("* %s joined %s\n", nick, channel)
}

func (ConsoleSink) OnPart(nick, channel, reason string) {
	fmt.Printf("* %s left %s (%s)\n", nick, channel, reason)
}

func (ConsoleSink) OnQuit(nick, reason string) {
	fmt.Printf("* %s quit (%s)\n", nick, reason)
}

func (ConsoleSink) OnTopic(channel, text string) {
	fmt.Printf("* topic for %s: %s\n", channel, text)
}

func (ConsoleSink) OnDisconnect(err error) {
	if err != nil {
		fmt.Printf("* disconnected: %s\n", err)
		return
	}
	fmt.Println("* disconnected")
}
