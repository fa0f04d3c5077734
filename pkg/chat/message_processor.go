package chat

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"WA-Order-Bot/domain"
	"WA-Order-Bot/entities"
	"WA-Order-Bot/pkg/category"
	"WA-Order-Bot/pkg/order"
	"WA-Order-Bot/pkg/product"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const recentOrderLimit = 3

var (
	selectionPattern = regexp.MustCompile(`^(\d{1,3})(?:\s*[x*]\s*(\d{1,3})|\s+(\d{1,3}))?$`)

	greetings = map[string]bool{"hi": true, "hello": true, "halo": true, "hai": true, "start": true, "menu": true}
	yesWords  = map[string]bool{"yes": true, "y": true, "ya": true, "ok": true, "confirm": true}
	noWords   = map[string]bool{"no": true, "n": true, "tidak": true, "back": true}
)

type (
	// MessageProcessor turns one inbound message into a reply, updating the
	// session in place. The caller persists the session.
	MessageProcessor interface {
		Process(ctx context.Context, session *entities.ChatSession, msg domain.IncomingMessage) (string, error)
	}

	messageProcessor struct {
		categoryRepository category.CategoryRepository
		productRepository  product.ProductRepository
		sessionRepository  ChatSessionRepository
		orderService       order.OrderService
		replies            replies
	}
)

func NewMessageProcessor(
	categoryRepository category.CategoryRepository,
	productRepository product.ProductRepository,
	sessionRepository ChatSessionRepository,
	orderService order.OrderService,
	currency string,
) MessageProcessor {
	return &messageProcessor{
		categoryRepository: categoryRepository,
		productRepository:  productRepository,
		sessionRepository:  sessionRepository,
		orderService:       orderService,
		replies:            replies{currency: currency},
	}
}

func (p *messageProcessor) Process(ctx context.Context, session *entities.ChatSession, msg domain.IncomingMessage) (string, error) {
	text := strings.ToLower(strings.Join(strings.Fields(msg.Text), " "))
	if text == "" {
		return p.replies.unsupported(), nil
	}

	switch {
	case greetings[text]:
		return p.showCategories(ctx, session, text != "menu")
	case text == "help":
		return p.replies.help(), nil
	case text == "cart":
		return p.replies.cart(session.Items), nil
	case text == "checkout":
		return p.startCheckout(session), nil
	case text == "cancel" || text == "clear":
		return p.clearCart(ctx, session)
	case text == "status":
		return p.showStatus(ctx, session)
	case strings.HasPrefix(text, "remove "):
		return p.removeItem(ctx, session, strings.TrimPrefix(text, "remove "))
	}

	switch session.State {
	case domain.ChatStateBrowsingCategories:
		if n, _, ok := parseSelection(text); ok {
			return p.selectCategory(ctx, session, n)
		}
	case domain.ChatStateBrowsingProducts:
		if n, qty, ok := parseSelection(text); ok {
			return p.selectProduct(ctx, session, n, qty)
		}
	case domain.ChatStateAwaitingQuantity:
		if qty, err := strconv.Atoi(text); err == nil {
			return p.addPendingProduct(ctx, session, qty)
		}
		return p.replies.askQuantityAgain(), nil
	case domain.ChatStateConfirmingOrder:
		switch {
		case yesWords[text]:
			return p.placeOrder(ctx, session)
		case noWords[text]:
			return p.showCategories(ctx, session, false)
		}
		return p.replies.confirmAgain(), nil
	default:
		return p.showCategories(ctx, session, true)
	}

	return p.replies.notUnderstood(), nil
}

func (p *messageProcessor) showCategories(ctx context.Context, session *entities.ChatSession, greet bool) (string, error) {
	categories, err := p.categoryRepository.GetCategories(ctx, false)
	if err != nil {
		return "", err
	}

	session.CategoryID = nil
	session.PendingProductID = nil
	if len(categories) == 0 {
		setState(session, domain.ChatStateIdle, nil)
		return p.replies.menuUnavailable(), nil
	}

	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID.String())
	}
	setState(session, domain.ChatStateBrowsingCategories, ids)
	return p.replies.categories(session.CustomerName, categories, greet), nil
}

func (p *messageProcessor) selectCategory(ctx context.Context, session *entities.ChatSession, n int) (string, error) {
	id, ok := option(session, n)
	if !ok {
		return p.replies.invalidOption(len(session.Options)), nil
	}

	cat, err := p.categoryRepository.GetCategoryByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !cat.IsActive) {
		return p.showCategories(ctx, session, false)
	}
	if err != nil {
		return "", err
	}
	return p.showProducts(ctx, session, cat)
}

func (p *messageProcessor) showProducts(ctx context.Context, session *entities.ChatSession, cat *entities.Category) (string, error) {
	products, err := p.productRepository.GetAvailableProductsByCategory(ctx, cat.ID.String())
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return p.replies.emptyCategory(cat.Name), nil
	}

	ids := make([]string, 0, len(products))
	for _, pr := range products {
		ids = append(ids, pr.ID.String())
	}
	categoryID := cat.ID
	session.CategoryID = &categoryID
	session.PendingProductID = nil
	setState(session, domain.ChatStateBrowsingProducts, ids)
	return p.replies.products(cat.Name, products), nil
}

func (p *messageProcessor) selectProduct(ctx context.Context, session *entities.ChatSession, n, qty int) (string, error) {
	id, ok := option(session, n)
	if !ok {
		return p.replies.invalidOption(len(session.Options)), nil
	}

	pr, err := p.availableProduct(ctx, id)
	if err != nil {
		return "", err
	}
	if pr == nil {
		return p.replies.productGone(), nil
	}

	if qty == 0 {
		productID := pr.ID
		session.PendingProductID = &productID
		session.State = domain.ChatStateAwaitingQuantity
		return p.replies.askQuantity(pr), nil
	}
	return p.addToCart(ctx, session, pr, qty)
}

func (p *messageProcessor) addPendingProduct(ctx context.Context, session *entities.ChatSession, qty int) (string, error) {
	if session.PendingProductID == nil {
		return p.showCategories(ctx, session, false)
	}

	pr, err := p.availableProduct(ctx, session.PendingProductID.String())
	if err != nil {
		return "", err
	}
	if pr == nil {
		session.PendingProductID = nil
		session.State = domain.ChatStateBrowsingProducts
		return p.replies.productGone(), nil
	}
	return p.addToCart(ctx, session, pr, qty)
}

func (p *messageProcessor) addToCart(ctx context.Context, session *entities.ChatSession, pr *entities.Product, qty int) (string, error) {
	if qty < 1 || qty > domain.MaxItemQuantity {
		return p.replies.invalidQuantity(), nil
	}

	if err := p.sessionRepository.AddItem(ctx, session.ID, pr.ID, qty); err != nil {
		if errors.Is(err, domain.ErrInvalidQuantity) {
			return p.replies.invalidQuantity(), nil
		}
		return "", err
	}
	if err := p.reloadItems(ctx, session); err != nil {
		return "", err
	}

	session.PendingProductID = nil
	session.State = domain.ChatStateBrowsingProducts
	return p.replies.added(pr, qty, session.Items), nil
}

func (p *messageProcessor) removeItem(ctx context.Context, session *entities.ChatSession, arg string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > len(session.Items) {
		return p.replies.invalidCartLine(len(session.Items)), nil
	}

	item := session.Items[n-1]
	if err := p.sessionRepository.RemoveItem(ctx, session.ID, item.ProductID); err != nil {
		return "", err
	}
	if err := p.reloadItems(ctx, session); err != nil {
		return "", err
	}
	if session.State == domain.ChatStateConfirmingOrder {
		session.State = domain.ChatStateIdle
	}
	return p.replies.cart(session.Items), nil
}

func (p *messageProcessor) startCheckout(session *entities.ChatSession) string {
	if len(session.Items) == 0 {
		return p.replies.emptyCart()
	}
	session.PendingProductID = nil
	session.State = domain.ChatStateConfirmingOrder
	return p.replies.confirm(session.Items)
}

func (p *messageProcessor) placeOrder(ctx context.Context, session *entities.ChatSession) (string, error) {
	if len(session.Items) == 0 {
		session.State = domain.ChatStateIdle
		return p.replies.emptyCart(), nil
	}

	req := domain.CreateOrderRequest{
		CustomerPhone: session.Phone,
		CustomerName:  session.CustomerName,
		Items:         make([]domain.OrderItemRequest, 0, len(session.Items)),
	}
	for _, item := range session.Items {
		req.Items = append(req.Items, domain.OrderItemRequest{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
		})
	}

	clearCart := func(ctx context.Context, _ *entities.Order) error {
		return p.sessionRepository.ClearItems(ctx, session.ID)
	}

	res, err := p.orderService.CreateOrder(ctx, req, clearCart)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrProductUnavailable) {
			session.State = domain.ChatStateIdle
			return p.replies.orderItemUnavailable(), nil
		}
		return "", err
	}

	session.Items = nil
	session.CategoryID = nil
	session.PendingProductID = nil
	setState(session, domain.ChatStateIdle, nil)
	return p.replies.orderPlaced(res), nil
}

func (p *messageProcessor) clearCart(ctx context.Context, session *entities.ChatSession) (string, error) {
	if err := p.sessionRepository.ClearItems(ctx, session.ID); err != nil {
		return "", err
	}
	session.Items = nil
	session.CategoryID = nil
	session.PendingProductID = nil
	setState(session, domain.ChatStateIdle, nil)
	return p.replies.cartCleared(), nil
}

func (p *messageProcessor) showStatus(ctx context.Context, session *entities.ChatSession) (string, error) {
	orders, err := p.orderService.GetRecentOrdersByPhone(ctx, session.Phone, recentOrderLimit)
	if err != nil {
		return "", err
	}
	return p.replies.status(orders), nil
}

// availableProduct returns nil without error when the product no longer
// exists or cannot be ordered.
func (p *messageProcessor) availableProduct(ctx context.Context, id string) (*entities.Product, error) {
	pr, err := p.productRepository.GetProductByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !pr.IsAvailable || (pr.Category != nil && !pr.Category.IsActive) {
		return nil, nil
	}
	return pr, nil
}

func (p *messageProcessor) reloadItems(ctx context.Context, session *entities.ChatSession) error {
	items, err := p.sessionRepository.GetItems(ctx, session.ID)
	if err != nil {
		return err
	}
	session.Items = items
	return nil
}

func setState(session *entities.ChatSession, state string, options []string) {
	if options == nil {
		options = []string{}
	}
	session.State = state
	session.Options = options
}

func option(session *entities.ChatSession, n int) (string, bool) {
	if n < 1 || n > len(session.Options) {
		return "", false
	}
	id := session.Options[n-1]
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// parseSelection accepts "n", "n x q", "n*q" and "n q".
func parseSelection(text string) (n, qty int, ok bool) {
	m := selectionPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	n, _ = strconv.Atoi(m[1])
	if q := m[2] + m[3]; q != "" {
		qty, _ = strconv.Atoi(q)
		if qty == 0 {
			return 0, 0, false
		}
	}
	return n, qty, true
}
