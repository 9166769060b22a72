/*
Package workflow drives the booking conversation: a per-user finite
state machine that collects a date, a time window, names and a
resource selection, checks availability, and commits to the ledger.

PURPOSE:
  This is the orchestration layer between the interaction transport
  (free-text messages and short action signals) and the booking
  engine. It owns the per-user conversation registry and the selection
  session lifecycle.

FLOW:
  /book -> date -> start -> end -> employee -> resource selection
        -> manager -> availability check -> summary -> confirm
        -> availability RE-CHECK -> ledger append -> done

  The availability check runs twice on purpose: once before showing
  the summary, and again at the moment of commit, because another
  session may have committed a conflicting booking in between. The
  re-check narrows the race window; it does not close it (no lock
  spans check and append).

ERROR RECOVERY:
  - malformed input re-prompts the same step, nothing is lost
  - an availability rejection cancels the attempt with the reason
  - a store failure keeps every collected field and asks to retry
  - a stale button regenerates fresh controls, never a dead end

LIFECYCLE:
  Conversations are created by /book, removed on commit or cancel,
  and swept after an idle TTL so abandoned sessions do not accumulate.
*/
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/session"
)

const (
	// DefaultPageSize is the number of catalog entries per page.
	DefaultPageSize = 10

	// DefaultIdleTTL is how long an untouched conversation survives
	// before the sweeper discards it.
	DefaultIdleTTL = 30 * time.Minute
)

// Config wires a Workflow.
type Config struct {
	Catalog  booking.InventoryCatalog
	Ledger   booking.Ledger
	PageSize int           // 0 means DefaultPageSize
	IdleTTL  time.Duration // 0 means DefaultIdleTTL
	Logger   *zap.Logger   // nil means no logging

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Workflow is the conversation state machine, safe for concurrent use
// across users. Each user's conversation handles one step at a time.
type Workflow struct {
	catalog  booking.InventoryCatalog
	ledger   booking.Ledger
	engine   *booking.Engine
	pageSize int
	idleTTL  time.Duration
	log      *zap.Logger
	clock    func() time.Time

	mu    sync.Mutex
	convs map[string]*conversation
}

// conversation is one user's in-progress booking. lastSeen is guarded
// by the registry mutex; step and sel by the conversation mutex.
type conversation struct {
	mu       sync.Mutex
	step     step
	sel      *session.Session
	lastSeen time.Time
}

func New(cfg Config) *Workflow {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Workflow{
		catalog:  cfg.Catalog,
		ledger:   cfg.Ledger,
		engine:   booking.NewEngine(cfg.Catalog, cfg.Ledger),
		pageSize: cfg.PageSize,
		idleTTL:  cfg.IdleTTL,
		log:      cfg.Logger,
		clock:    cfg.Clock,
	}
}

// =============================================================================
// CONVERSATION REGISTRY
// =============================================================================

// begin creates a fresh conversation for the user, discarding any
// previous one.
func (w *Workflow) begin(userID string) *conversation {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.convs == nil {
		w.convs = make(map[string]*conversation)
	}
	conv := &conversation{step: stepDate{}, lastSeen: w.clock()}
	w.convs[userID] = conv
	return conv
}

// lookup returns the user's conversation and refreshes its idle
// timestamp, or nil when none is in progress.
func (w *Workflow) lookup(userID string) *conversation {
	w.mu.Lock()
	defer w.mu.Unlock()
	conv := w.convs[userID]
	if conv != nil {
		conv.lastSeen = w.clock()
	}
	return conv
}

// clear removes the user's conversation (commit, cancel, restart).
func (w *Workflow) clear(userID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.convs, userID)
}

// ExpireIdle discards conversations idle longer than the TTL and
// reports how many were removed.
func (w *Workflow) ExpireIdle() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	cutoff := w.clock().Add(-w.idleTTL)
	removed := 0
	for id, conv := range w.convs {
		if conv.lastSeen.Before(cutoff) {
			delete(w.convs, id)
			removed++
		}
	}
	return removed
}

// RunSweeper expires idle conversations on the given interval until
// the context is cancelled.
func (w *Workflow) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := w.ExpireIdle(); n > 0 {
				w.log.Debug("expired idle conversations", zap.Int("count", n))
			}
		}
	}
}

// =============================================================================
// INBOUND: FREE TEXT
// =============================================================================

// HandleMessage processes one free-text message from a user and
// returns the reply. Messages starting with "/" are commands.
func (w *Workflow) HandleMessage(ctx context.Context, userID, text string) Reply {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		return w.handleCommand(ctx, userID, text)
	}

	conv := w.lookup(userID)
	if conv == nil {
		return Reply{Text: "Send /book to start a booking, or /help for the command list."}
	}
	conv.mu.Lock()
	defer conv.mu.Unlock()

	switch st := conv.step.(type) {
	case stepDate:
		date, err := booking.ParseDate(text)
		if err != nil {
			return Reply{Text: "That doesn't look like a date. Use YYYY-MM-DD, e.g. 2026-03-10:"}
		}
		conv.step = stepStart{date: date}
		return Reply{Text: "Enter the start time as HH:MM, e.g. 09:00:"}

	case stepStart:
		start, err := booking.ParseTimeOfDay(text)
		if err != nil {
			return Reply{Text: "That doesn't look like a time. Use HH:MM, e.g. 09:00:"}
		}
		conv.step = stepEnd{date: st.date, start: start}
		return Reply{Text: "Enter the end time as HH:MM, e.g. 12:30:"}

	case stepEnd:
		end, err := booking.ParseTimeOfDay(text)
		if err != nil {
			return Reply{Text: "That doesn't look like a time. Use HH:MM, e.g. 12:30:"}
		}
		if !st.start.Before(end) {
			return Reply{Text: "The end time must be strictly after the start time. Enter the end time:"}
		}
		conv.step = stepEmployee{date: st.date, start: st.start, end: end}
		return Reply{Text: "Who will be working? Enter the employee name(s):"}

	case stepEmployee:
		if text == "" {
			return Reply{Text: "Please enter the employee name(s):"}
		}
		conv.step = stepResources{date: st.date, start: st.start, end: st.end, employee: text}
		conv.sel = session.New()
		return w.renderSelection(ctx, conv, 0,
			"Pick the resources you need. You can add several items, or enter them manually.")

	case stepResources:
		// Typed instead of using the buttons: manual resource entry.
		set := booking.ParseResources(text)
		if set.Empty() {
			return Reply{Text: "Name at least one resource, e.g. \"Oscilloscope:2; Laptop:1\":"}
		}
		return w.toManager(conv, st, set)

	case stepManager:
		if text == "" {
			return Reply{Text: "Please enter the project manager's name:"}
		}
		return w.toConfirm(ctx, userID, conv, st, text)

	case stepConfirm:
		switch {
		case isAffirmative(text):
			return w.commit(ctx, userID, conv, st)
		case isNegative(text):
			w.clear(userID)
			return Reply{Text: "Booking cancelled."}
		default:
			return Reply{
				Text:     "Press Confirm or Cancel below, or reply \"yes\" / \"cancel\".",
				Keyboard: confirmKeyboard(),
			}
		}
	}
	return Reply{Text: "Send /book to start a booking."}
}

// =============================================================================
// INBOUND: ACTION SIGNALS
// =============================================================================

// HandleAction processes one short action signal (a button press) and
// returns the reply. Unknown or out-of-state signals get a hint, never
// an error.
func (w *Workflow) HandleAction(ctx context.Context, userID, data string) Reply {
	conv := w.lookup(userID)
	if conv == nil {
		return Reply{Text: "These controls have expired. Send /book to start over."}
	}
	conv.mu.Lock()
	defer conv.mu.Unlock()

	switch st := conv.step.(type) {
	case stepResources:
		return w.handleSelectionAction(ctx, conv, st, data)
	case stepConfirm:
		return w.handleConfirmAction(ctx, userID, conv, st, data)
	default:
		return Reply{Text: "Those buttons aren't active right now. Send /book to start a booking."}
	}
}

func (w *Workflow) handleSelectionAction(ctx context.Context, conv *conversation, st stepResources, data string) Reply {
	parts := strings.Split(data, ":")
	sel := conv.sel

	switch parts[0] {
	case "page":
		if len(parts) != 2 {
			return w.renderSelection(ctx, conv, sel.Page(), "Pick more or finish your selection:")
		}
		page, err := strconv.Atoi(parts[1])
		if err != nil {
			page = 0
		}
		return w.renderSelection(ctx, conv, page, "Pick more or finish your selection:")

	case "sel":
		if len(parts) != 2 {
			return w.staleControls(ctx, conv)
		}
		inv, err := w.catalog.ReadInventory(ctx)
		if err != nil {
			return w.sourceFailure(err, "read inventory")
		}
		pending, err := sel.BeginSelect(parts[1], inv)
		if err != nil {
			return w.staleControls(ctx, conv)
		}
		if pending.Max == 0 {
			sel.CancelSelect()
			return w.renderSelection(ctx, conv, sel.Page(),
				fmt.Sprintf("%q is not available right now. Pick something else:", pending.Name))
		}
		return pickReply(pending)

	case "qty":
		if len(parts) == 2 && parts[1] == "cancel" {
			sel.CancelSelect()
			return w.renderSelection(ctx, conv, sel.Page(), "Selection cancelled. Pick more or finish:")
		}
		if len(parts) != 3 {
			return w.staleControls(ctx, conv)
		}
		key, op := parts[1], parts[2]
		switch op {
		case "inc", "dec":
			delta := 1
			if op == "dec" {
				delta = -1
			}
			pending, err := sel.AdjustQuantity(key, delta)
			if err != nil {
				return w.staleControls(ctx, conv)
			}
			return pickReply(pending)
		case "add":
			added, err := sel.CommitToCart(key)
			if err != nil {
				return w.staleControls(ctx, conv)
			}
			return w.renderSelection(ctx, conv, sel.Page(),
				fmt.Sprintf("Added %d × %s to the cart. Pick more or finish:", added.Quantity, added.Name))
		default: // noop: refresh the pick view
			pending, err := sel.AdjustQuantity(key, 0)
			if err != nil {
				return w.staleControls(ctx, conv)
			}
			return pickReply(pending)
		}

	case "cart":
		return w.handleCartAction(ctx, conv, parts)

	case "done":
		if sel.Cart().Empty() {
			return w.renderSelection(ctx, conv, sel.Page(),
				"Your cart is empty - add at least one resource, or enter them manually.")
		}
		return w.toManager(conv, st, sel.Cart())

	case "manual":
		sel.ClearCart()
		return Reply{Text: "Enter the resources as text, e.g.:\nOscilloscope:2; Laptop:1\n(a name without a number counts as 1)"}

	default:
		return w.staleControls(ctx, conv)
	}
}

func (w *Workflow) handleCartAction(ctx context.Context, conv *conversation, parts []string) Reply {
	sel := conv.sel
	if len(parts) == 1 { // "cart": show it
		if sel.Cart().Empty() {
			return w.renderSelection(ctx, conv, sel.Page(), "Your cart is empty.")
		}
		return cartReply(sel, "Your cart:")
	}

	switch parts[1] {
	case "clear":
		sel.ClearCart()
		return w.renderSelection(ctx, conv, sel.Page(), "Cart cleared. Pick more or finish:")

	case "close":
		return w.renderSelection(ctx, conv, sel.Page(), "Pick more or finish your selection:")

	case "dec":
		if len(parts) != 3 {
			return cartReply(sel, "Your cart:")
		}
		name, removed, err := sel.DecrementOne(parts[2])
		if err != nil {
			return staleCart(sel)
		}
		if sel.Cart().Empty() {
			return w.renderSelection(ctx, conv, sel.Page(),
				fmt.Sprintf("%q removed - the cart is now empty. Pick more resources:", name))
		}
		if removed {
			return cartReply(sel, fmt.Sprintf("%q removed from the cart.", name))
		}
		return cartReply(sel, fmt.Sprintf("One %q put back.", name))

	case "rm":
		if len(parts) != 3 {
			return cartReply(sel, "Your cart:")
		}
		name, err := sel.RemoveAll(parts[2])
		if err != nil {
			return staleCart(sel)
		}
		if sel.Cart().Empty() {
			return w.renderSelection(ctx, conv, sel.Page(),
				fmt.Sprintf("%q removed - the cart is now empty. Pick more resources:", name))
		}
		return cartReply(sel, fmt.Sprintf("%q removed from the cart.", name))

	default:
		return staleCart(sel)
	}
}

func (w *Workflow) handleConfirmAction(ctx context.Context, userID string, conv *conversation, st stepConfirm, data string) Reply {
	switch data {
	case "confirm:yes":
		return w.commit(ctx, userID, conv, st)
	case "confirm:no":
		w.clear(userID)
		return Reply{Text: "Booking cancelled."}
	default:
		return Reply{
			Text:     "Press Confirm or Cancel below.",
			Keyboard: confirmKeyboard(),
		}
	}
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// toManager freezes the selected resources into the candidate request
// and discards the selection session.
func (w *Workflow) toManager(conv *conversation, st stepResources, set *booking.ResourceSet) Reply {
	frozen := set.Clone()
	conv.step = stepManager{
		date:      st.date,
		start:     st.start,
		end:       st.end,
		employee:  st.employee,
		resources: frozen,
	}
	conv.sel = nil
	return Reply{Text: fmt.Sprintf("You selected:\n%s\n\nEnter the project manager's name:", frozen)}
}

// toConfirm runs the pre-confirmation availability check and, on
// success, presents the summary.
func (w *Workflow) toConfirm(ctx context.Context, userID string, conv *conversation, st stepManager, manager string) Reply {
	req := booking.Request{
		Date:      st.date,
		Start:     st.start,
		End:       st.end,
		Employee:  st.employee,
		Resources: st.resources,
		Manager:   manager,
	}

	err := w.engine.CheckRequest(ctx, req.Date, req.Start, req.End, req.Resources)
	switch {
	case errors.Is(err, booking.ErrUnavailable):
		w.clear(userID)
		return Reply{Text: "Unfortunately this booking is not possible: " + availabilityReason(err)}
	case err != nil:
		w.log.Warn("availability check failed", zap.String("user", userID), zap.Error(err))
		return Reply{Text: "The booking store is unreachable right now. Send the manager's name again to retry."}
	}

	conv.step = stepConfirm{request: req}
	return Reply{
		Text: fmt.Sprintf(
			"Please confirm the booking:\nDate: %s\nTime: %s - %s\nEmployee(s): %s\nResources: %s\nProject manager: %s",
			req.Date, req.Start, req.End, req.Employee, req.Resources, req.Manager),
		Keyboard: confirmKeyboard(),
	}
}

// commit re-checks availability and appends to the ledger. The
// re-check is mandatory: another session may have committed a
// conflicting booking since the summary was shown.
func (w *Workflow) commit(ctx context.Context, userID string, conv *conversation, st stepConfirm) Reply {
	req := st.request

	err := w.engine.CheckRequest(ctx, req.Date, req.Start, req.End, req.Resources)
	switch {
	case errors.Is(err, booking.ErrUnavailable):
		w.clear(userID)
		return Reply{Text: "Unfortunately this booking is no longer possible: " + availabilityReason(err)}
	case err != nil:
		w.log.Warn("commit-time availability check failed", zap.String("user", userID), zap.Error(err))
		return Reply{
			Text:     "The booking store is unreachable right now. Press Confirm again to retry.",
			Keyboard: confirmKeyboard(),
		}
	}

	if err := w.ledger.Append(ctx, req.Record()); err != nil {
		w.log.Error("ledger append failed", zap.String("user", userID), zap.Error(err))
		return Reply{
			Text:     "The booking could not be recorded. Press Confirm again to retry.",
			Keyboard: confirmKeyboard(),
		}
	}

	w.clear(userID)
	w.log.Info("booking committed",
		zap.String("user", userID),
		zap.String("date", req.Date.String()),
		zap.String("window", req.Start.String()+"-"+req.End.String()),
		zap.String("resources", req.Resources.String()),
	)
	return Reply{Text: "Booking recorded. Use /book to make another."}
}

// =============================================================================
// COMMANDS
// =============================================================================

func (w *Workflow) handleCommand(ctx context.Context, userID, text string) Reply {
	cmd := strings.ToLower(strings.Fields(text)[0])
	switch cmd {
	case "/start":
		return Reply{Text: "Hi! I book lab equipment.\n" +
			"/list - show equipment and quantities\n" +
			"/book - make a booking\n" +
			"/cancel - abandon the current booking\n" +
			"/help - help"}

	case "/help":
		return Reply{Text: "How to use:\n" +
			"1) /list shows the inventory\n" +
			"2) /book starts a guided booking - pick resources with the\n" +
			"   buttons or type them like \"Oscilloscope:2; Laptop:1\"\n" +
			"3) /cancel abandons an in-progress booking"}

	case "/list":
		inv, err := w.catalog.ReadInventory(ctx)
		if err != nil {
			w.log.Warn("inventory read failed", zap.Error(err))
			return Reply{Text: "The inventory is unreachable right now. Try again in a moment."}
		}
		if inv.Len() == 0 {
			return Reply{Text: "The inventory is empty."}
		}
		var b strings.Builder
		b.WriteString("Inventory:\n")
		for _, r := range inv.Resources() {
			fmt.Fprintf(&b, "- %s: %d\n", r.Name, r.Quantity)
		}
		return Reply{Text: strings.TrimRight(b.String(), "\n")}

	case "/book":
		w.begin(userID)
		return Reply{Text: "Starting a booking.\nEnter the date as YYYY-MM-DD, e.g. 2026-03-10:"}

	case "/cancel":
		if w.lookup(userID) == nil {
			return Reply{Text: "Nothing to cancel."}
		}
		w.clear(userID)
		return Reply{Text: "Booking cancelled."}

	default:
		return Reply{Text: "Unknown command. Try /help."}
	}
}

// =============================================================================
// REPLY HELPERS
// =============================================================================

// renderSelection re-reads inventory and renders a catalog page with
// fresh keys. On a store failure the conversation state is preserved
// and the user is asked to retry.
func (w *Workflow) renderSelection(ctx context.Context, conv *conversation, page int, lead string) Reply {
	inv, err := w.catalog.ReadInventory(ctx)
	if err != nil {
		return w.sourceFailure(err, "read inventory")
	}
	view := conv.sel.RenderPage(inv, page, w.pageSize)
	return Reply{Text: lead, Keyboard: selectionKeyboard(view)}
}

// staleControls is the recovery path for an outdated catalog key:
// regenerate the keyboard and re-prompt.
func (w *Workflow) staleControls(ctx context.Context, conv *conversation) Reply {
	return w.renderSelection(ctx, conv, conv.sel.Page(),
		"Those buttons have expired. Here is the current list - pick again:")
}

func (w *Workflow) sourceFailure(err error, op string) Reply {
	w.log.Warn("store operation failed", zap.String("op", op), zap.Error(err))
	return Reply{Text: "The inventory is unreachable right now. Try again in a moment."}
}

func pickReply(p *session.Pending) Reply {
	return Reply{
		Text:     fmt.Sprintf("Selected: %s\nAvailable: %d\nQuantity: %d", p.Name, p.Max, p.Quantity),
		Keyboard: quantityKeyboard(p),
	}
}

func cartReply(sel *session.Session, lead string) Reply {
	items := sel.RenderCart()
	var b strings.Builder
	b.WriteString(lead)
	for i, item := range items {
		fmt.Fprintf(&b, "\n%d. %s: %d", i+1, item.Name, item.Quantity)
	}
	return Reply{Text: b.String(), Keyboard: cartKeyboard(items)}
}

func staleCart(sel *session.Session) Reply {
	return cartReply(sel, "That cart button has expired. Here is your current cart:")
}

func availabilityReason(err error) string {
	var avail *booking.AvailabilityError
	if errors.As(err, &avail) {
		return avail.Error()
	}
	return err.Error()
}

// =============================================================================
// CONFIRMATION TOKENS
// =============================================================================

// Free-text equivalents of the confirm/cancel buttons, matched
// case-insensitively.
var (
	affirmativeTokens = map[string]bool{"yes": true, "y": true, "ok": true, "confirm": true}
	negativeTokens    = map[string]bool{"no": true, "n": true, "cancel": true}
)

func isAffirmative(text string) bool {
	return affirmativeTokens[strings.ToLower(strings.TrimSpace(text))]
}

func isNegative(text string) bool {
	return negativeTokens[strings.ToLower(strings.TrimSpace(text))]
}
