package chat

import (
	"fmt"
	"strings"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/entities"

	"github.com/shopspring/decimal"
)

const (
	replyInternalError = "Sorry, something went wrong on our side. Please try again in a moment."
	commandHint        = "Type *menu* to browse, *cart* to view your cart, *checkout* to order or *help* for all commands."
)

type replies struct {
	currency string
}

func (r replies) money(d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", r.currency, d.StringFixed(2))
}

func (r replies) categories(name string, categories []*entities.Category, greet bool) string {
	var b strings.Builder
	if greet {
		if name != "" {
			fmt.Fprintf(&b, "Hi %s! ", name)
		} else {
			b.WriteString("Hi! ")
		}
		b.WriteString("Welcome to our shop.\n\n")
	}
	b.WriteString("*Our menu*\n")
	for i, c := range categories {
		fmt.Fprintf(&b, "%d. %s", i+1, c.Name)
		if c.Description != "" {
			fmt.Fprintf(&b, " - %s", c.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nReply with a category number.")
	return b.String()
}

func (r replies) products(categoryName string, products []*entities.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", categoryName)
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, p.Name, r.money(p.Price))
		if len(p.Ingredients) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(p.Ingredients, ", "))
		}
	}
	b.WriteString("\nReply with a product number, or number and quantity like *2 x3*. ")
	b.WriteString("Type *menu* for other categories.")
	return b.String()
}

func (r replies) cartLines(b *strings.Builder, items []entities.ChatSessionItem) decimal.Decimal {
	total := decimal.Zero
	for i, item := range items {
		name := "Unknown product"
		price := decimal.Zero
		if item.Product != nil {
			name = item.Product.Name
			price = item.Product.Price
		}
		subtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
		fmt.Fprintf(b, "%d. %s x%d - %s\n", i+1, name, item.Quantity, r.money(subtotal))
	}
	return total
}

func (r replies) cart(items []entities.ChatSessionItem) string {
	if len(items) == 0 {
		return r.emptyCart()
	}
	var b strings.Builder
	b.WriteString("*Your cart*\n")
	total := r.cartLines(&b, items)
	fmt.Fprintf(&b, "\nTotal: *%s*\n\nType *checkout* to order or *remove <number>* to drop a line.", r.money(total))
	return b.String()
}

func (r replies) added(p *entities.Product, qty int, items []entities.ChatSessionItem) string {
	total := decimal.Zero
	for _, item := range items {
		if item.Product != nil {
			total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return fmt.Sprintf("Added %d x %s to your cart. Cart total: *%s*.\n\nReply with another product number to add more, or type *checkout* to place your order.",
		qty, p.Name, r.money(total))
}

func (r replies) confirm(items []entities.ChatSessionItem) string {
	var b strings.Builder
	b.WriteString("*Order summary*\n")
	total := r.cartLines(&b, items)
	fmt.Fprintf(&b, "\nTotal: *%s*\n\nReply *yes* to place the order or *no* to keep shopping.", r.money(total))
	return b.String()
}

func (r replies) orderPlaced(o domain.OrderResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you! Your order *%s* has been placed.\n", o.OrderNumber)
	fmt.Fprintf(&b, "Total: *%s*\nStatus: %s\n", r.money(o.Total), o.Status)
	if o.PaymentURL != "" {
		fmt.Fprintf(&b, "\nPay here: %s\n", o.PaymentURL)
	}
	b.WriteString("\nType *status* any time to check on it.")
	return b.String()
}

func (r replies) status(orders []domain.OrderResponse) string {
	if len(orders) == 0 {
		return "You have no orders yet. Type *menu* to start one."
	}
	var b strings.Builder
	b.WriteString("*Your recent orders*\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "- %s: %s, %s (payment %s)\n", o.OrderNumber, r.money(o.Total), o.Status, o.PaymentStatus)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r replies) askQuantity(p *entities.Product) string {
	return fmt.Sprintf("How many *%s* would you like? Reply with a number from 1 to %d.", p.Name, domain.MaxItemQuantity)
}

func (r replies) askQuantityAgain() string {
	return fmt.Sprintf("Please reply with a quantity from 1 to %d.", domain.MaxItemQuantity)
}

func (r replies) invalidQuantity() string {
	return fmt.Sprintf("Quantity must be between 1 and %d per product.", domain.MaxItemQuantity)
}

func (r replies) invalidOption(n int) string {
	if n == 0 {
		return "There is nothing to choose from right now. Type *menu* to start."
	}
	return fmt.Sprintf("Please reply with a number from 1 to %d.", n)
}

func (r replies) invalidCartLine(n int) string {
	if n == 0 {
		return r.emptyCart()
	}
	return fmt.Sprintf("Please use *remove <number>* with a cart line from 1 to %d.", n)
}

func (r replies) emptyCategory(name string) string {
	return fmt.Sprintf("Nothing is available in *%s* right now. Please pick another category.", name)
}

func (r replies) emptyCart() string {
	return "Your cart is empty. Type *menu* to browse our products."
}

func (r replies) cartCleared() string {
	return "Your cart has been cleared. Type *menu* whenever you want to start again."
}

func (r replies) productGone() string {
	return "Sorry, that product is no longer available. Please choose another one."
}

func (r replies) orderItemUnavailable() string {
	return "Sorry, some items in your cart are no longer available. Type *cart* to review it."
}

func (r replies) menuUnavailable() string {
	return "Sorry, our menu is not available right now. Please try again later."
}

func (r replies) confirmAgain() string {
	return "Please reply *yes* to place your order or *no* to keep shopping."
}

func (r replies) unsupported() string {
	return "Sorry, I can only read text messages. " + commandHint
}

func (r replies) notUnderstood() string {
	return "Sorry, I did not understand that. " + commandHint
}

func (r replies) help() string {
	return strings.Join([]string{
		"*Commands*",
		"menu - browse categories",
		"cart - show your cart",
		"remove <number> - remove a cart line",
		"checkout - review and place your order",
		"cancel - clear your cart",
		"status - your recent orders",
	}, "\n")
}
