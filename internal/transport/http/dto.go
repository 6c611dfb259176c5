package http

import (
	"time"

	"github.com/samber/lo"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
)

type errorResponse struct {
	Message string `json:"message"`
}

// Orders

type orderLineRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Qty       int32  `json:"qty" binding:"required"`
}

// placeOrderRequest без позиций означает оформление из серверной корзины.
type placeOrderRequest struct {
	Items []orderLineRequest `json:"items"`
}

type changeOrderStatusRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

type orderItemResponse struct {
	ID             string `json:"id"`
	VariantID      string `json:"variant_id"`
	Qty            int32  `json:"qty"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
}

type deliveryResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PriceMinor int64  `json:"price_minor"`
	EtaDays    int32  `json:"eta_days"`
}

type transactionResponse struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount_minor"`
	Status      string `json:"status"`
	Method      string `json:"method"`
	ExternalID  string `json:"external_id,omitempty"`
}

type orderResponse struct {
	ID          string               `json:"id"`
	UserID      string               `json:"user_id"`
	Status      string               `json:"status"`
	Currency    string               `json:"currency"`
	TotalMinor  int64                `json:"total_minor"`
	Items       []orderItemResponse  `json:"items"`
	Delivery    *deliveryResponse    `json:"delivery,omitempty"`
	Transaction *transactionResponse `json:"transaction,omitempty"`
	Version     int64                `json:"version"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  int             `json:"total,omitempty"`
}

func toOrderResponse(order domain.Order) orderResponse {
	resp := orderResponse{
		ID:         order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		Currency:   order.Currency,
		TotalMinor: order.TotalMinor,
		Items: lo.Map(order.Items, func(item domain.OrderItem, _ int) orderItemResponse {
			return orderItemResponse{
				ID:             item.ID,
				VariantID:      item.VariantID,
				Qty:            item.Qty,
				UnitPriceMinor: item.UnitPriceMinor,
			}
		}),
		Version:   order.Version,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}

	if order.Delivery != nil {
		resp.Delivery = &deliveryResponse{
			ID:         order.Delivery.ID,
			Title:      order.Delivery.Title,
			PriceMinor: order.Delivery.PriceMinor,
			EtaDays:    order.Delivery.EtaDays,
		}
	}
	if order.Transaction != nil {
		resp.Transaction = &transactionResponse{
			ID:          order.Transaction.ID,
			AmountMinor: order.Transaction.AmountMinor,
			Status:      string(order.Transaction.Status),
			Method:      order.Transaction.Method,
			ExternalID:  order.Transaction.ExternalID,
		}
	}
	return resp
}

func toOrderLines(items []orderLineRequest) []checkout.LineRequest {
	return lo.Map(items, func(item orderLineRequest, _ int) checkout.LineRequest {
		return checkout.LineRequest{VariantID: item.VariantID, Qty: item.Qty}
	})
}

func toCartLines(view cart.View) []checkout.LineRequest {
	return lo.Map(view.Lines, func(line cart.LineView, _ int) checkout.LineRequest {
		return checkout.LineRequest{VariantID: line.VariantID, Qty: line.Qty}
	})
}

// Users

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type userListResponse struct {
	Users []userResponse `json:"users"`
	Total int            `json:"total"`
}

// toUserResponse не выдаёт наружу API-токен.
func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// Cart

type addCartLineRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Qty       int32  `json:"qty" binding:"required"`
}

type setCartQtyRequest struct {
	Qty int32 `json:"qty"`
}

type cartLineResponse struct {
	VariantID      string `json:"variant_id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Qty            int32  `json:"qty"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
	SubtotalMinor  int64  `json:"subtotal_minor"`
}

type cartResponse struct {
	UserID     string             `json:"user_id"`
	Lines      []cartLineResponse `json:"lines"`
	Currency   string             `json:"currency"`
	TotalMinor int64              `json:"total_minor"`
}

func toCartResponse(view cart.View) cartResponse {
	return cartResponse{
		UserID: view.UserID,
		Lines: lo.Map(view.Lines, func(line cart.LineView, _ int) cartLineResponse {
			return cartLineResponse{
				VariantID:      line.VariantID,
				ProductID:      line.ProductID,
				ProductName:    line.ProductName,
				Qty:            line.Qty,
				UnitPriceMinor: line.UnitPriceMinor,
				SubtotalMinor:  line.SubtotalMinor,
			}
		}),
		Currency:   view.Currency,
		TotalMinor: view.TotalMinor,
	}
}

// Catalog

type variantRequest struct {
	ID      string `json:"id"`
	ColorID string `json:"color_id"`
	SizeID  string `json:"size_id"`
	Stock   int32  `json:"stock"`
}

type productRequest struct {
	Name        string           `json:"name" binding:"required"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	BrandID     string           `json:"brand_id"`
	CategoryID  string           `json:"category_id"`
	PriceMinor  int64            `json:"price_minor"`
	Currency    string           `json:"currency" binding:"required"`
	ImageURL    string           `json:"image_url"`
	TagIDs      []string         `json:"tag_ids"`
	Variants    []variantRequest `json:"variants"`
}

func (r productRequest) toDomain(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		BrandID:     r.BrandID,
		CategoryID:  r.CategoryID,
		PriceMinor:  r.PriceMinor,
		Currency:    r.Currency,
		ImageURL:    r.ImageURL,
		TagIDs:      r.TagIDs,
		Variants: lo.Map(r.Variants, func(v variantRequest, _ int) domain.ProductVariant {
			return domain.ProductVariant{
				ID:        v.ID,
				ProductID: id,
				ColorID:   v.ColorID,
				SizeID:    v.SizeID,
				Stock:     v.Stock,
			}
		}),
	}
}

type createVariantRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	ColorID   string `json:"color_id"`
	SizeID    string `json:"size_id"`
	Stock     int32  `json:"stock"`
}

type referenceRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

type colorRequest struct {
	Name string `json:"name" binding:"required"`
	Hex  string `json:"hex"`
}

type sizeRequest struct {
	Label string `json:"label" binding:"required"`
}

type bannerRequest struct {
	Title    string `json:"title" binding:"required"`
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url"`
	Active   bool   `json:"active"`
}
