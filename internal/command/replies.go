package command

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/brohem/BudgedBuddy/internal/core"
)

const (
	replyCleared     = "🧹 All your budget data has been cleared."
	replyNoHistory   = "📭 No expenses recorded in the selected period."
	replyAccepted    = "✅ You've joined a shared budget!"
	replyNoInvite    = "❌ No invitation found. Ask someone to share with you first."
	replyShareUsage  = "❌ Usage: share +1234567890"
	replyBudgetUsage = "❌ Usage: setbudget 1000"
	replyExpenseUsage = "❌ Usage: addexpense 50 groceries"
	replyTopupUsage  = "❌ Usage: topup 800"
	replyHistoryUsage = "❌ Usage: history 5"
	replyQuickUsage  = "❌ Couldn't process that amount. Use -120 rent to log a quick expense."
	replyBusy        = "⏳ Your budget is being updated right now. Please try again in a moment."
	replyError       = "❌ There was an error processing your request."
)

const replyIntro = "BudgetBuddy: A Personal Finance Tool for Everyone\n" +
	"👋 Welcome! I’d love to introduce you to BudgetBuddy — a simple, free, and private WhatsApp-based assistant designed to help people manage their money better.\n\n" +
	"💡 What is BudgetBuddy?\n" +
	"- Set a monthly budget 💰\n" +
	"- Log daily expenses 💸\n" +
	"- Track your remaining funds in real-time 📊\n" +
	"- Stay financially aware and in control — without apps or spreadsheets\n\n" +
	"🙌 100% free. No data collection. No ads. Just helpful."

const replyHelp = "📘 *BudgetBuddy Help Guide*\n" +
	"Commands:\n" +
	"- setbudget 1000 → Set your starting monthly budget\n" +
	"- topup 800 → Set the monthly top-up amount\n" +
	"- addexpense 50 groceries → Add an expense with description\n" +
	"- -120 rent → Quick expense entry with minus\n" +
	"- history 5 → Show expenses from the last 5 days\n" +
	"- status → Show your current budget status\n" +
	"- clear → Reset all your budget data\n" +
	"- share +1234567890 → Invite someone to share your budget\n" +
	"- accept → Accept an invitation to join a shared budget\n" +
	"- help → Show this help message"

func replyBudgetSet(amount decimal.Decimal) string {
	return fmt.Sprintf("✅ Budget set to %s.", core.FormatAmount(amount))
}

func replyExpenseAdded(description string, amount, balance decimal.Decimal) string {
	return fmt.Sprintf("💸 %s - %s added. Remaining: %s",
		description, core.FormatAmount(amount), core.FormatAmount(balance))
}

func replyTopupSet(amount decimal.Decimal) string {
	return fmt.Sprintf("🔄 Top-up amount set to %s", core.FormatAmount(amount))
}

func replyStatus(a *core.Account) string {
	return fmt.Sprintf("💼 Budget: %s\n💰 Current Balance: %s\n🔁 Top-up: %s",
		core.FormatAmount(a.Allocation),
		core.FormatAmount(a.Balance),
		core.FormatAmount(a.Topup))
}

func replyHistory(entries []core.Expense) string {
	if len(entries) == 0 {
		return replyNoHistory
	}
	var b strings.Builder
	b.WriteString("📜 Expense History:")
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s: %s - %s", e.Date, core.FormatAmount(e.Amount), e.Description)
	}
	return b.String()
}

func replyInviteSent(invitee string) string {
	return fmt.Sprintf("📨 Invitation sent to %s. Ask them to type 'accept' to join.", invitee)
}

func replyAlreadyMember(invitee string) string {
	return fmt.Sprintf("ℹ️ %s is already part of your budget.", invitee)
}

func appendBalanceWarning(reply string, a *core.Account) string {
	if a.Balance.IsNegative() {
		return reply + fmt.Sprintf(
			"\n⚠️ Warning: Your balance is negative (%s). Please review your spending.",
			core.FormatAmount(a.Balance))
	}
	return reply
}

// ReplyBusy is the reply surfaced when retries against a contended account
// are exhausted.
func ReplyBusy() string { return replyBusy }

// ReplyError is the catch-all reply for unexpected turn failures.
func ReplyError() string { return replyError }
