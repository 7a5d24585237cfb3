package command

import "strings"

// Verb identifies the operation a parsed message asks for.
type Verb string

const (
	VerbQuick     Verb = "quick"
	VerbSetBudget Verb = "setbudget"
	VerbAddExpense Verb = "addexpense"
	VerbTopup     Verb = "topup"
	VerbClear     Verb = "clear"
	VerbHistory   Verb = "history"
	VerbShare     Verb = "share"
	VerbAccept    Verb = "accept"
	VerbStatus    Verb = "status"
	VerbGreeting  Verb = "greeting"
	VerbHelp      Verb = "help"
)

// Command is a normalized inbound message: the verb plus its
// whitespace-delimited arguments. For VerbQuick the first argument is the
// signed amount token itself.
type Command struct {
	Verb Verb
	Args []string
}

var keywords = []struct {
	token string
	verb  Verb
}{
	{"setbudget", VerbSetBudget},
	{"addexpense", VerbAddExpense},
	{"topup", VerbTopup},
	{"clear", VerbClear},
	{"history", VerbHistory},
	{"share", VerbShare},
	{"accept", VerbAccept},
	{"status", VerbStatus},
	{"help", VerbHelp},
}

// Parse normalizes text (trim, lowercase, one optional leading "/") and
// matches the first token against the known command set by prefix, longest
// recognized keyword winning. A leading "-" marks a quick expense entry.
// Greeting phrases and anything unrecognized resolve to static replies.
func Parse(text, botName string) Command {
	msg := strings.ToLower(strings.TrimSpace(text))
	msg = strings.TrimPrefix(msg, "/")

	if strings.HasPrefix(msg, "-") {
		return Command{Verb: VerbQuick, Args: strings.Fields(msg)}
	}

	bot := strings.ToLower(botName)
	switch msg {
	case "hi", "hi " + bot, "hello " + bot:
		return Command{Verb: VerbGreeting}
	}

	fields := strings.Fields(msg)
	if len(fields) == 0 {
		return Command{Verb: VerbHelp}
	}

	match := Command{Verb: VerbHelp, Args: fields[1:]}
	best := 0
	for _, kw := range keywords {
		if len(kw.token) > best && strings.HasPrefix(fields[0], kw.token) {
			match.Verb = kw.verb
			best = len(kw.token)
		}
	}
	return match
}
