/*
reply.go - The outbound reply and logical keyboard model

PURPOSE:
  Every workflow step answers with text plus an optional keyboard: rows
  of buttons, each carrying a label and a short action payload. The
  payload travels back verbatim as the action signal, so it must stay
  within the transport's size budget - which is why buttons carry
  session-issued short keys instead of resource names.

ACTION PAYLOAD GRAMMAR:
  page:<n>             switch catalog page
  sel:<key>            begin a quantity pick for a catalog entry
  qty:<key>:inc|dec    adjust the pending quantity
  qty:<key>:add        commit the pending pick to the cart
  qty:<key>:noop       refresh the pick view (the count button)
  qty:cancel           drop the pending pick
  cart                 show the cart
  cart:dec:<key>       remove one unit of a cart line
  cart:rm:<key>        remove a cart line outright
  cart:clear           empty the cart
  cart:close           back to the catalog
  done                 finish selection
  manual               switch to typed resource input
  confirm:yes|no       confirmation verdict
*/
package workflow

import (
	"fmt"
	"strconv"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/session"
)

// MaxActionData is the size budget for a button's action payload in
// bytes. Every payload this package emits fits within it.
const MaxActionData = 64

// Reply is one outbound message: text plus an optional keyboard.
type Reply struct {
	Text     string
	Keyboard *Keyboard
}

// Keyboard is rows of selectable actions.
type Keyboard struct {
	Rows [][]Button
}

// Button is one selectable action: a human label and the short payload
// sent back when pressed.
type Button struct {
	Label string
	Data  string
}

func btn(label, data string) Button {
	return Button{Label: label, Data: data}
}

// =============================================================================
// KEYBOARD BUILDERS
// =============================================================================

// selectionKeyboard renders one catalog page: an item button per row,
// the cart/finish/manual controls, and a navigation row when the
// catalog spans multiple pages.
func selectionKeyboard(view session.PageView) *Keyboard {
	kb := &Keyboard{}
	for _, item := range view.Items {
		kb.Rows = append(kb.Rows, []Button{
			btn(fmt.Sprintf("%s (%d)", item.Name, item.Quantity), "sel:"+item.Key),
		})
	}
	kb.Rows = append(kb.Rows,
		[]Button{btn("View cart", "cart"), btn("Finish selection", "done")},
		[]Button{btn("Enter manually", "manual")},
	)
	if view.TotalPages > 1 {
		var nav []Button
		if view.Page > 0 {
			nav = append(nav, btn("«", "page:"+strconv.Itoa(view.Page-1)))
		}
		nav = append(nav, btn(
			fmt.Sprintf("%d/%d", view.Page+1, view.TotalPages),
			"page:"+strconv.Itoa(view.Page),
		))
		if view.Page < view.TotalPages-1 {
			nav = append(nav, btn("»", "page:"+strconv.Itoa(view.Page+1)))
		}
		kb.Rows = append(kb.Rows, nav)
	}
	return kb
}

// quantityKeyboard renders the -/count/+ picker for a pending
// selection plus the add/cancel controls.
func quantityKeyboard(p *session.Pending) *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{
			btn("−", "qty:"+p.Key+":dec"),
			btn(strconv.Itoa(p.Quantity), "qty:"+p.Key+":noop"),
			btn("+", "qty:"+p.Key+":inc"),
		},
		{
			btn("Add to cart", "qty:"+p.Key+":add"),
			btn("Cancel", "qty:cancel"),
		},
	}}
}

// cartKeyboard renders per-line decrement/remove controls plus the
// clear/close row.
func cartKeyboard(items []session.CartItem) *Keyboard {
	kb := &Keyboard{}
	for i, item := range items {
		kb.Rows = append(kb.Rows, []Button{
			btn(fmt.Sprintf("−1 (%d)", i+1), "cart:dec:"+item.Key),
			btn("Remove", "cart:rm:"+item.Key),
		})
	}
	kb.Rows = append(kb.Rows, []Button{
		btn("Clear cart", "cart:clear"),
		btn("Close", "cart:close"),
	})
	return kb
}

// confirmKeyboard renders the final confirm/cancel choice.
func confirmKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{btn("Confirm ✅", "confirm:yes"), btn("Cancel ❌", "confirm:no")},
	}}
}
