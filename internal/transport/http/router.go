package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"mtengine/internal/archive"
	"mtengine/internal/engine"
	"mtengine/internal/position"
	"mtengine/internal/quote"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Core is the engine surface the HTTP layer drives. *app.Service
// implements it.
type Core interface {
	PushTick(ctx context.Context, b quote.BidAsk) (engine.TickOutcome, error)

	Open(ctx context.Context, cmd engine.OpenCommand) (*position.Active, error)
	Close(ctx context.Context, id string) (*position.Closed, error)
	ToppingUp(ctx context.Context, id string, amount decimal.Decimal) (*position.Active, error)
	ReturnToppingUp(ctx context.Context, id string) (decimal.Decimal, error)
	AddSwap(ctx context.Context, id string, amount decimal.Decimal) (*position.Active, error)

	CreatePending(ctx context.Context, cmd engine.PendingCommand) (*position.Pending, error)
	CancelPending(ctx context.Context, id string) (*position.Pending, error)

	GetQuote(ctx context.Context, assetPair string) (quote.BidAsk, error)
	GetActive(ctx context.Context, id string) (*position.Active, error)
	GetPending(ctx context.Context, id string) (*position.Pending, error)
	ListActive(ctx context.Context, f engine.Filter) ([]*position.Active, error)
	ListPending(ctx context.Context, f engine.Filter) ([]*position.Pending, error)
	ListClosed(ctx context.Context, q archive.Query) ([]*position.Closed, error)
	GetClosed(ctx context.Context, id string) (*position.Closed, error)
}

// Router maps the /api routes onto the engine core.
type Router struct {
	core Core
}

func NewRouter(core Core) *Router {
	return &Router{core: core}
}

func (r *Router) Register(group *gin.RouterGroup) {
	group.POST("/ticks", r.pushTick)
	group.GET("/quotes/:pair", r.getQuote)

	group.POST("/positions", r.openPosition)
	group.GET("/positions", r.listActive)
	group.GET("/positions/:id", r.getActive)
	group.POST("/positions/:id/close", r.closePosition)
	group.POST("/positions/:id/topping-up", r.toppingUp)
	group.POST("/positions/:id/topping-up/return", r.returnToppingUp)
	group.POST("/positions/:id/swaps", r.addSwap)

	group.POST("/pending", r.createPending)
	group.GET("/pending", r.listPending)
	group.GET("/pending/:id", r.getPending)
	group.DELETE("/pending/:id", r.cancelPending)

	group.GET("/closed", r.listClosed)
	group.GET("/closed/:id", r.getClosed)
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrPositionNotFound), errors.Is(err, archive.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrNoLiquidity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (r *Router) pushTick(c *gin.Context) {
	var req tickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Bid.IsPositive() || !req.Ask.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bid and ask must be positive"})
		return
	}
	outcome, err := r.core.PushTick(c.Request.Context(), req.toBidAsk())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"executed":     outcome.Executed,
		"margin_calls": outcome.MarginCalls,
		"closed":       outcome.Closed,
	})
}

func (r *Router) getQuote(c *gin.Context) {
	b, err := r.core.GetQuote(c.Request.Context(), c.Param("pair"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newQuoteView(b))
}

func (r *Router) openPosition(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	side, err := parseSide(req.Side)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.InvestAmount.IsPositive() || !req.Leverage.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invest_amount and leverage must be positive"})
		return
	}

	cmd := engine.OpenCommand{
		ID:                req.ID,
		TraderID:          req.TraderID,
		AccountID:         req.AccountID,
		AssetPair:         req.AssetPair,
		Base:              req.Base,
		Quote:             req.Quote,
		Collateral:        req.Collateral,
		Side:              side,
		InvestAmount:      req.InvestAmount,
		Leverage:          req.Leverage,
		MarginCallPercent: req.MarginCallPercent,
		ToppingUpPercent:  req.ToppingUpPercent,
		TakeProfitProfit:  req.TakeProfitProfit,
		TakeProfitPrice:   req.TakeProfitPrice,
		StopLossProfit:    req.StopLossProfit,
		StopLossPrice:     req.StopLossPrice,
		Metadata:          req.Metadata,
	}
	if req.StopOutPercent != nil {
		cmd.StopOutPercent = *req.StopOutPercent
	}

	p, err := r.core.Open(c.Request.Context(), cmd)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newActiveView(p))
}

func (r *Router) createPending(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	side, err := parseSide(req.Side)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DesiredPrice == nil || !req.DesiredPrice.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "desired_price must be positive"})
		return
	}
	if !req.InvestAmount.IsPositive() || !req.Leverage.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invest_amount and leverage must be positive"})
		return
	}

	cmd := engine.PendingCommand{
		ID:                req.ID,
		TraderID:          req.TraderID,
		AccountID:         req.AccountID,
		AssetPair:         req.AssetPair,
		Base:              req.Base,
		Quote:             req.Quote,
		Collateral:        req.Collateral,
		Side:              side,
		InvestAmount:      req.InvestAmount,
		Leverage:          req.Leverage,
		MarginCallPercent: req.MarginCallPercent,
		ToppingUpPercent:  req.ToppingUpPercent,
		TakeProfitProfit:  req.TakeProfitProfit,
		TakeProfitPrice:   req.TakeProfitPrice,
		StopLossProfit:    req.StopLossProfit,
		StopLossPrice:     req.StopLossPrice,
		DesiredPrice:      *req.DesiredPrice,
		Metadata:          req.Metadata,
	}
	if req.StopOutPercent != nil {
		cmd.StopOutPercent = *req.StopOutPercent
	}

	p, err := r.core.CreatePending(c.Request.Context(), cmd)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPendingView(p))
}

func (r *Router) getActive(c *gin.Context) {
	p, err := r.core.GetActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newActiveView(p))
}

func (r *Router) getPending(c *gin.Context) {
	p, err := r.core.GetPending(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPendingView(p))
}

func filterFromQuery(c *gin.Context) engine.Filter {
	return engine.Filter{
		Base:       c.Query("base"),
		Quote:      c.Query("quote"),
		Collateral: c.Query("collateral"),
		TraderID:   c.Query("trader"),
		AccountID:  c.Query("account"),
	}
}

func (r *Router) listActive(c *gin.Context) {
	ps, err := r.core.ListActive(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": newActiveViews(ps)})
}

func (r *Router) listPending(c *gin.Context) {
	ps, err := r.core.ListPending(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": newPendingViews(ps)})
}

func (r *Router) closePosition(c *gin.Context) {
	p, err := r.core.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newClosedView(p))
}

func (r *Router) cancelPending(c *gin.Context) {
	p, err := r.core.CancelPending(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPendingView(p))
}

func (r *Router) toppingUp(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	p, err := r.core.ToppingUp(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newActiveView(p))
}

func (r *Router) returnToppingUp(c *gin.Context) {
	amount, err := r.core.ReturnToppingUp(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"returned": amount})
}

func (r *Router) addSwap(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := r.core.AddSwap(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newActiveView(p))
}

func (r *Router) listClosed(c *gin.Context) {
	q := archive.Query{
		TraderID:  c.Query("trader"),
		AccountID: c.Query("account"),
		AssetPair: c.Query("asset_pair"),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		q.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return
		}
		q.Offset = n
	}
	ps, err := r.core.ListClosed(c.Request.Context(), q)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": newClosedViews(ps)})
}

func (r *Router) getClosed(c *gin.Context) {
	p, err := r.core.GetClosed(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newClosedView(p))
}
