package bot

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brohem/BudgedBuddy/internal/command"
	"github.com/brohem/BudgedBuddy/internal/core"
	"github.com/brohem/BudgedBuddy/internal/ledger"
	applog "github.com/brohem/BudgedBuddy/internal/log"
	"github.com/brohem/BudgedBuddy/internal/store"
)

// EventPublisher receives a record of each mutating turn. The AMQP client
// satisfies this; a nil publisher disables eventing.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, accountID, kind string, amount decimal.Decimal) error
}

// Processor runs one inbound message end to end: resolve the sender to an
// account, serialize on it, apply any pending monthly rollover, dispatch
// the command and persist the outcome. Contended or conflicting turns are
// retried a bounded number of times before a try-again reply surfaces.
type Processor struct {
	store      store.AccountStore
	locks      *accountLocks
	resolver   *ledger.Resolver
	engine     *ledger.Engine
	dispatcher *command.Dispatcher
	events     EventPublisher
	log        *applog.Logger

	botName     string
	lockTimeout time.Duration
	saveRetries int
	now         func() time.Time
}

type ProcessorOptions struct {
	BotName     string
	LockTimeout time.Duration
	SaveRetries int
	Events      EventPublisher // optional
}

func NewProcessor(st store.AccountStore, opts ProcessorOptions, logger *applog.Logger) *Processor {
	engine := ledger.NewEngine(st, logger)
	invites := ledger.NewInvitations(st, logger)
	return &Processor{
		store:       st,
		locks:       newAccountLocks(),
		resolver:    ledger.NewResolver(st, logger),
		engine:      engine,
		dispatcher:  command.NewDispatcher(engine, invites, logger),
		events:      opts.Events,
		log:         logger.WithComponent(applog.ComponentBot),
		botName:     opts.BotName,
		lockTimeout: opts.LockTimeout,
		saveRetries: opts.SaveRetries,
		now:         time.Now,
	}
}

// HandleTurn processes one inbound message and returns the reply text.
// The reply is always usable; a non-nil error is diagnostic only.
func (p *Processor) HandleTurn(ctx context.Context, sender, body string) (string, error) {
	cmd := command.Parse(body, p.botName)
	p.log.InfoContext(ctx, "Handling turn",
		applog.FieldSender, sender, applog.FieldCommand, string(cmd.Verb))

	var lastErr error
	for attempt := 0; attempt < p.saveRetries; attempt++ {
		res, err := p.runTurn(ctx, sender, cmd)
		if err == nil {
			return res.Reply, nil
		}
		lastErr = err
		if !errors.Is(err, core.ErrBusy) && !errors.Is(err, core.ErrConflict) {
			p.log.ErrorContext(ctx, "Turn failed",
				applog.FieldSender, sender, applog.FieldError, err)
			return command.ReplyError(), err
		}
		p.log.WarnContext(ctx, "Retrying contended turn",
			applog.FieldSender, sender, "attempt", attempt+1)
	}

	p.log.WarnContext(ctx, "Turn retries exhausted",
		applog.FieldSender, sender, applog.FieldError, lastErr)
	return command.ReplyBusy(), lastErr
}

func (p *Processor) runTurn(ctx context.Context, sender string, cmd command.Command) (command.Result, error) {
	accountID, err := p.resolver.Resolve(ctx, sender)
	if err != nil {
		return command.Result{}, err
	}

	sem := p.locks.get(accountID)
	acquireCtx, cancel := context.WithTimeout(ctx, p.lockTimeout)
	err = sem.Acquire(acquireCtx, 1)
	cancel()
	if err != nil {
		return command.Result{}, core.ErrBusy
	}
	defer sem.Release(1)

	now := p.now()
	acct, err := p.engine.Ensure(ctx, accountID, sender, now)
	if err != nil {
		return command.Result{}, err
	}

	// setbudget replaces the whole financial state anyway; topping up
	// first would leak last month's allowance into the fresh budget.
	today := core.DateOf(now)
	if cmd.Verb != command.VerbSetBudget {
		p.engine.ApplyMonthlyRollover(acct, today)
	}

	res, err := p.dispatcher.Execute(ctx, acct, sender, cmd, today)
	if err != nil {
		return command.Result{}, err
	}

	if !res.DropAccount {
		if err := p.store.Save(ctx, acct); err != nil {
			return command.Result{}, err
		}
	}

	if len(res.Invalidate) > 0 {
		p.resolver.Invalidate(res.Invalidate...)
	}

	if res.EventKind != "" && p.events != nil {
		eventAccount := res.EventAccountID
		if eventAccount == "" {
			eventAccount = acct.ID
		}
		if err := p.events.PublishLedgerEvent(ctx, eventAccount, res.EventKind, res.EventAmount); err != nil {
			// Events are best effort; the turn already succeeded.
			p.log.WarnContext(ctx, "Event publish failed",
				applog.FieldAccountID, eventAccount, applog.FieldError, err)
		}
	}

	return res, nil
}
