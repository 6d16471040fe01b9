package orders

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

func fromModel(row models.Order) Order {
	out := Order{
		ID:        row.ID,
		Reference: row.Reference,
		UserID:    row.UserID,
		Status:    row.Status,
		ShipTo: Address{
			FullName: row.FullName,
			Address:  row.Address,
			City:     row.City,
			State:    row.State,
			Zip:      row.Zip,
			Country:  row.Country,
			Phone:    row.Phone,
		},
		ShippingMethod: row.ShippingMethod,
		ShippingFee:    row.ShippingFee,
		Discount:       row.Discount,
		Subtotal:       row.Subtotal,
		Total:          row.Total,
		Lines:          make([]Line, 0, len(row.Lines)),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.CouponCode != nil {
		out.CouponCode = *row.CouponCode
	}
	for _, line := range row.Lines {
		out.Lines = append(out.Lines, Line{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal,
		})
	}
	return out
}

func fromModels(rows []models.Order) []Order {
	out := make([]Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out
}

func toModel(in PlaceInput) *models.Order {
	row := &models.Order{
		Reference:      in.Reference,
		UserID:         in.UserID,
		FullName:       in.ShipTo.FullName,
		Address:        in.ShipTo.Address,
		City:           in.ShipTo.City,
		State:          in.ShipTo.State,
		Zip:            in.ShipTo.Zip,
		Country:        in.ShipTo.Country,
		Phone:          in.ShipTo.Phone,
		ShippingMethod: in.ShippingMethod,
		ShippingFee:    in.ShippingFee.Round(2),
		Discount:       in.Discount.Round(2),
		Subtotal:       in.Subtotal.Round(2),
		Total:          in.Total.Round(2),
		Lines:          make([]models.OrderLine, 0, len(in.Lines)),
	}
	if in.CouponCode != "" {
		code := in.CouponCode
		row.CouponCode = &code
	}
	for i, line := range in.Lines {
		row.Lines = append(row.Lines, models.OrderLine{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice.Round(2),
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal.Round(2),
			Position:    i,
		})
	}
	return row
}
