package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/ariefcatur/go-pizza-bot/internal/builder"
	"github.com/ariefcatur/go-pizza-bot/internal/cart"
	"github.com/ariefcatur/go-pizza-bot/internal/catalog"
	"github.com/ariefcatur/go-pizza-bot/internal/checkout"
	"github.com/ariefcatur/go-pizza-bot/internal/command"
	"github.com/ariefcatur/go-pizza-bot/internal/logger"
	"github.com/ariefcatur/go-pizza-bot/internal/notify"
)

func (d *Dispatcher) showMenu(ctx context.Context, c Customer) Reply {
	var rows [][]notify.Action
	for _, cat := range d.menu.Categories {
		rows = append(rows, []notify.Action{notify.NewAction(cat.Title, command.Category, cat.ID, "")})
	}
	rows = append(rows, []notify.Action{notify.NewAction("🛒 Cart", command.CartShow, "", "")})
	d.send(ctx, c.ID, notify.Message{Text: "📂 Choose a section:", Actions: rows})
	return Reply{}
}

func (d *Dispatcher) showCategory(ctx context.Context, c Customer, id string) Reply {
	cat, ok := d.menu.Category(id)
	if !ok {
		return Reply{Text: "❌ Unknown section.", Alert: true}
	}
	if len(cat.Items) == 0 {
		d.send(ctx, c.ID, notify.Text("📂 This section is empty."))
		return Reply{}
	}
	for i, p := range cat.Items {
		msg := productCard(cat, i, p)
		ref, ok := d.send(ctx, c.ID, msg)
		if !ok && msg.Media != nil {
			// the photo may be gone; the card still works as text
			msg.Media = nil
			ref, ok = d.send(ctx, c.ID, msg)
		}
		if ok {
			d.track(c.ID, ref)
		}
	}
	return Reply{}
}

func productCard(cat catalog.Category, index int, p catalog.Product) notify.Message {
	ref := cat.Ref(index)
	var text strings.Builder
	fmt.Fprintf(&text, "<b>%s</b>\n%s\n\n", html.EscapeString(p.Name), html.EscapeString(p.Description))

	var row []notify.Action
	if cat.Sized {
		var prices []string
		for _, size := range []catalog.Size{catalog.Small, catalog.Large} {
			price, err := p.Price(size)
			if err != nil {
				continue
			}
			prices = append(prices, fmt.Sprintf("%s: <b>%s</b>", size.Label(), checkout.Money(price)))
			row = append(row, notify.NewAction(
				fmt.Sprintf("%s — %s", size.Label(), checkout.Money(price)), command.AddItem, ref, string(size)))
		}
		text.WriteString(strings.Join(prices, " | "))
	} else if price, err := p.Price(catalog.NoSize); err == nil {
		fmt.Fprintf(&text, "Price: <b>%s</b>", checkout.Money(price))
		row = append(row, notify.NewAction("➕ Add — "+checkout.Money(price), command.AddItem, ref, ""))
	}

	msg := notify.Message{Text: text.String()}
	if len(row) > 0 {
		msg.Actions = [][]notify.Action{row}
	}
	if url := strings.TrimSpace(p.ImageURL); url != "" {
		msg.Media = &notify.Media{Kind: notify.Photo, URL: url}
	}
	return msg
}

func (d *Dispatcher) addItem(ctx context.Context, c Customer, cmd command.Command, src *notify.MessageRef) Reply {
	cat, idx, p, err := d.menu.Resolve(cmd.Ref)
	if err != nil {
		return Reply{Text: "❌ Product not found.", Alert: true}
	}
	size, err := catalog.ParseSize(cmd.Variant)
	if err != nil {
		return Reply{Text: "❌ Unknown size.", Alert: true}
	}
	if !cat.Sized {
		size = catalog.NoSize
	} else if size == catalog.NoSize {
		size = catalog.Small
	}
	price, err := p.Price(size)
	if err != nil {
		return Reply{Text: "❌ No price for this size.", Alert: true}
	}

	if p.Custom {
		s := d.builder.Begin(c.ID, size, price)
		d.show(ctx, c.ID, src, builderView(s, d.builder.Ingredients()))
		return Reply{}
	}

	name := p.Name
	if l := size.Label(); l != "" {
		name = fmt.Sprintf("%s (%s)", p.Name, l)
	}
	key := cart.ProductKey(cat.ID, idx, string(size))
	if err := d.carts.Add(c.ID, key, name, price, 1, nil); err != nil {
		logger.Errorw("add to cart failed", "user_id", c.ID, "key", key, "error", err)
		return Reply{Text: "❌ Could not add this item.", Alert: true}
	}
	return Reply{Text: "✅ " + name + " added to the cart!"}
}

func (d *Dispatcher) builderToggle(ctx context.Context, c Customer, ingredient string, src *notify.MessageRef) Reply {
	s, _, err := d.builder.Toggle(c.ID, ingredient)
	if err != nil {
		return builderError(err)
	}
	d.show(ctx, c.ID, src, builderView(s, d.builder.Ingredients()))
	return Reply{}
}

func (d *Dispatcher) builderDone(ctx context.Context, c Customer, src *notify.MessageRef) Reply {
	line, err := d.builder.Done(c.ID)
	if err != nil {
		return builderError(err)
	}
	text := fmt.Sprintf("✅ <b>%s</b> added to the cart for %s.", html.EscapeString(line.Name), checkout.Money(line.UnitPrice))
	if desc := d.builder.Ingredients().Describe(line.Details.Ingredients); desc != "" {
		text += "\n" + html.EscapeString(desc)
	}
	d.show(ctx, c.ID, src, notify.Message{
		Text:    text,
		Actions: [][]notify.Action{{notify.NewAction("🛒 Cart", command.CartShow, "", "")}},
	})
	return Reply{Text: "✅ Added!"}
}

func (d *Dispatcher) builderCancel(ctx context.Context, c Customer, src *notify.MessageRef) Reply {
	if err := d.builder.Cancel(c.ID); err != nil {
		return builderError(err)
	}
	d.show(ctx, c.ID, src, notify.Text("❌ Custom pizza discarded."))
	return Reply{Text: "Cancelled."}
}

func builderError(err error) Reply {
	switch {
	case errors.Is(err, builder.ErrNoSession):
		return Reply{Text: "❌ Start building your pizza again from the menu.", Alert: true}
	case errors.Is(err, builder.ErrUnknownIngredient):
		return Reply{Text: "❌ Unknown ingredient.", Alert: true}
	}
	logger.Errorw("builder failed", "error", err)
	return Reply{Text: "❌ Something went wrong, please try again.", Alert: true}
}

func builderView(s builder.Session, table catalog.Ingredients) notify.Message {
	var text strings.Builder
	fmt.Fprintf(&text, "<b>%s</b>\nBase: %s\n", html.EscapeString(builder.Name(s.Size)), checkout.Money(s.BasePrice))
	if desc := table.Describe(s.Ingredients); desc != "" {
		fmt.Fprintf(&text, "Toppings: %s\n", html.EscapeString(desc))
	}
	text.WriteString("\nTap ingredients to add or remove them:")

	var rows [][]notify.Action
	var row []notify.Action
	for _, in := range table {
		label := in.Name
		if g := s.Ingredients[in.Key]; g > 0 {
			label = fmt.Sprintf("✅ %s (%dg)", in.Name, g)
		}
		row = append(row, notify.NewAction(label, command.BuilderToggle, in.Key, ""))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []notify.Action{
		notify.NewAction("⬅️ Back", command.BuilderCancel, "", ""),
		notify.NewAction(fmt.Sprintf("✅ Done (%s)", checkout.Money(s.Price(table))), command.BuilderDone, "", ""),
	})
	return notify.Message{Text: text.String(), Actions: rows}
}
