package http

import (
	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

func toLotResponse(l *entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		ID:         l.ID,
		ProductID:  l.ProductID,
		LotNumber:  l.LotNumber,
		Location:   l.Location,
		ExpiryDate: l.ExpiryDate.Format(dto.DateLayout),
		Quantity:   l.Quantity,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func toMovementResponse(m *entity.MovementEntry) dto.MovementResponse {
	return dto.MovementResponse{
		ID:               m.ID,
		LotID:            m.LotID,
		ProductID:        m.ProductID,
		Kind:             m.Kind,
		Quantity:         m.Quantity,
		FromLocation:     m.FromLocation,
		ToLocation:       m.ToLocation,
		DestinationLotID: m.DestinationLotID,
		TransactionID:    m.TransactionID,
		Note:             m.Note,
		CreatedAt:        m.CreatedAt,
		CreatedBy:        m.CreatedBy,
	}
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:            s.ID,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		CustomerName:  s.CustomerName,
		CreatedAt:     s.CreatedAt,
		CreatedBy:     s.CreatedBy,
		Lines:         make([]dto.SaleLineResponse, 0, len(s.Lines)),
	}
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, dto.SaleLineResponse{
			ID:        l.ID,
			LineNo:    l.LineNo,
			LotID:     l.LotID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	return out
}
