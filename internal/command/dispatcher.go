package command

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/brohem/BudgedBuddy/internal/amqp"
	"github.com/brohem/BudgedBuddy/internal/core"
	"github.com/brohem/BudgedBuddy/internal/ledger"
	applog "github.com/brohem/BudgedBuddy/internal/log"
)

const defaultHistoryDays = 7

// Result is the outcome of a dispatched command. DropAccount means the
// turn's resolved account was absorbed into another one and must not be
// saved. Invalidate lists identities whose cached resolution is stale.
type Result struct {
	Reply       string
	DropAccount bool
	Invalidate  []string
	EventKind   string
	EventAmount decimal.Decimal
	// EventAccountID overrides the turn's resolved account in the published
	// event; accept reports the joined account, not the absorbed one.
	EventAccountID string
}

// Dispatcher routes parsed commands to the ledger engine and invitation
// manager. Validation failures become user-facing replies, never errors;
// only infrastructure failures (store contention, I/O) propagate so the
// caller can retry the turn.
type Dispatcher struct {
	engine  *ledger.Engine
	invites *ledger.Invitations
	log     *applog.Logger
}

func NewDispatcher(engine *ledger.Engine, invites *ledger.Invitations, logger *applog.Logger) *Dispatcher {
	return &Dispatcher{
		engine:  engine,
		invites: invites,
		log:     logger.WithComponent(applog.ComponentBot),
	}
}

func (d *Dispatcher) Execute(ctx context.Context, acct *core.Account, sender string, cmd Command, today core.Date) (Result, error) {
	switch cmd.Verb {
	case VerbQuick:
		return d.quick(acct, cmd.Args, today), nil
	case VerbSetBudget:
		return d.setBudget(acct, cmd.Args, today), nil
	case VerbAddExpense:
		return d.addExpense(acct, cmd.Args, today), nil
	case VerbTopup:
		return d.topup(acct, cmd.Args), nil
	case VerbClear:
		return d.clear(acct, sender), nil
	case VerbHistory:
		return d.history(acct, cmd.Args, today), nil
	case VerbShare:
		return d.share(acct, cmd.Args), nil
	case VerbAccept:
		return d.accept(ctx, acct, sender)
	case VerbStatus:
		return Result{Reply: replyStatus(acct)}, nil
	case VerbGreeting:
		return Result{Reply: replyIntro}, nil
	default:
		return Result{Reply: replyHelp}, nil
	}
}

func (d *Dispatcher) quick(acct *core.Account, args []string, today core.Date) Result {
	amount, err := core.ParseSignedAmount(args[0])
	if err != nil {
		return Result{Reply: replyQuickUsage}
	}
	description := strings.Join(args[1:], " ")
	if description == "" {
		description = core.QuickEntryDescription
	}
	if err := d.engine.PostQuickExpense(acct, amount, description, today); err != nil {
		return Result{Reply: replyQuickUsage}
	}
	reply := replyExpenseAdded(description, amount.Abs(), acct.Balance)
	return Result{
		Reply:       appendBalanceWarning(reply, acct),
		EventKind:   amqp.EventExpensePosted,
		EventAmount: amount.Abs(),
	}
}

func (d *Dispatcher) setBudget(acct *core.Account, args []string, today core.Date) Result {
	if len(args) < 1 {
		return Result{Reply: replyBudgetUsage}
	}
	amount, err := core.ParseAmount(args[0])
	if err != nil {
		return Result{Reply: replyBudgetUsage}
	}
	if err := d.engine.SetBudget(acct, amount, today); err != nil {
		return Result{Reply: replyBudgetUsage}
	}
	return Result{
		Reply:       replyBudgetSet(amount),
		EventKind:   amqp.EventBudgetSet,
		EventAmount: amount,
	}
}

func (d *Dispatcher) addExpense(acct *core.Account, args []string, today core.Date) Result {
	if len(args) < 1 {
		return Result{Reply: replyExpenseUsage}
	}
	amount, err := core.ParseAmount(args[0])
	if err != nil {
		return Result{Reply: replyExpenseUsage}
	}
	description := strings.Join(args[1:], " ")
	if err := d.engine.PostExpense(acct, amount, description, today); err != nil {
		return Result{Reply: replyExpenseUsage}
	}
	reply := replyExpenseAdded(description, amount, acct.Balance)
	return Result{
		Reply:       appendBalanceWarning(reply, acct),
		EventKind:   amqp.EventExpensePosted,
		EventAmount: amount,
	}
}

func (d *Dispatcher) topup(acct *core.Account, args []string) Result {
	if len(args) < 1 {
		return Result{Reply: replyTopupUsage}
	}
	amount, err := core.ParseAmount(args[0])
	if err != nil {
		return Result{Reply: replyTopupUsage}
	}
	if err := d.engine.SetTopup(acct, amount); err != nil {
		return Result{Reply: replyTopupUsage}
	}
	return Result{
		Reply:       replyTopupSet(amount),
		EventKind:   amqp.EventTopupSet,
		EventAmount: amount,
	}
}

func (d *Dispatcher) clear(acct *core.Account, sender string) Result {
	// Everyone but the sender loses membership; their resolutions go stale.
	removed := make([]string, 0, len(acct.Members))
	for _, m := range acct.Members {
		if m != sender {
			removed = append(removed, m)
		}
	}
	d.engine.Clear(acct, sender)
	return Result{
		Reply:      replyCleared,
		Invalidate: removed,
		EventKind:  amqp.EventAccountCleared,
	}
}

func (d *Dispatcher) history(acct *core.Account, args []string, today core.Date) Result {
	days := defaultHistoryDays
	if len(args) >= 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return Result{Reply: replyHistoryUsage}
		}
		days = n
	}
	entries, err := d.engine.History(acct, days, today)
	if err != nil {
		return Result{Reply: replyHistoryUsage}
	}
	return Result{Reply: replyHistory(entries)}
}

func (d *Dispatcher) share(acct *core.Account, args []string) Result {
	if len(args) != 1 || !strings.HasPrefix(args[0], "+") {
		return Result{Reply: replyShareUsage}
	}
	invitee := args[0]
	added, err := d.invites.Invite(acct, invitee)
	if err != nil {
		return Result{Reply: replyShareUsage}
	}
	if !added {
		return Result{Reply: replyAlreadyMember(invitee)}
	}
	return Result{
		Reply:     replyInviteSent(invitee),
		EventKind: amqp.EventMemberInvited,
	}
}

func (d *Dispatcher) accept(ctx context.Context, acct *core.Account, sender string) (Result, error) {
	joined, err := d.invites.Accept(ctx, sender, acct)
	if errors.Is(err, core.ErrNotFound) {
		return Result{Reply: replyNoInvite}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{
		Reply:          replyAccepted,
		DropAccount:    joined.ID != acct.ID,
		Invalidate:     []string{sender},
		EventKind:      amqp.EventMemberJoined,
		EventAccountID: joined.ID,
	}, nil
}
