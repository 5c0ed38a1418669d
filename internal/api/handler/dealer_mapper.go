package handler

import (
	"github.com/dealerhub/dealer-admin/internal/core/domain"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

func toCreateDealerInput(req createDealerRequest) ports.CreateDealerInput {
	return ports.CreateDealerInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		OperatingHours: req.OperatingHours,
		Status:         req.Status,
		Region:         req.Region,
	}
}

func toDealerPatch(req updateDealerRequest) domain.DealerPatch {
	patch := domain.DealerPatch{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		OperatingHours: req.OperatingHours,
		Region:         req.Region,
	}
	if req.Status != nil {
		s := domain.DealerStatus(*req.Status)
		patch.Status = &s
	}
	return patch
}

func toListDealersInput(q listDealersQuery) ports.ListDealersInput {
	return ports.ListDealersInput{
		Search:    q.Search,
		Status:    q.Status,
		Region:    q.Region,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Page,
		Limit:     q.Limit,
	}
}
