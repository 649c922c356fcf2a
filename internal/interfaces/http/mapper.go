package http

import (
	"github.com/jhoicas/StockCount-api/internal/application/catalog"
	"github.com/jhoicas/StockCount-api/internal/application/dto"
	"github.com/jhoicas/StockCount-api/internal/application/feed"
	"github.com/jhoicas/StockCount-api/internal/application/report"
	"github.com/jhoicas/StockCount-api/internal/application/review"
	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/entrystate"
)

func toEntryResponse(e entity.StockEntry) dto.EntryResponse {
	out := dto.EntryResponse{
		ID:           e.ID,
		Stream:       string(e.Stream),
		MaterialID:   e.MaterialID,
		MaterialName: e.MaterialName,
		MaterialType: e.MaterialType,
		EntryUOM:     e.EntryUOM,
		CountedQty:   e.CountedQty,
		PackCount:    e.PackCount,
		TagNo:        e.TagNo,
		BatchNo:      e.BatchNo,
		PONo:         e.PONo,
		Remarks:      e.Remarks,
		Status:       string(e.Status),
		IsZero:       e.IsZero,
		IsCancel:     e.IsCancel,
		QtyLocked:    entrystate.QuantityLocked(&e),
		PlantCode:    e.PlantCode,
		LocationCode: e.LocationCode,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
		UpdatedBy:    e.UpdatedBy,
		UpdatedAt:    e.UpdatedAt,
	}
	if !e.EntryDate.IsZero() {
		d := e.EntryDate
		out.EntryDate = &d
	}
	return out
}

func toFeedResponses(msgs []feed.Message) []dto.FeedMessageResponse {
	out := make([]dto.FeedMessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = dto.FeedMessageResponse{ID: m.ID, Kind: string(m.Kind), Text: m.Text, CreatedAt: m.CreatedAt}
	}
	return out
}

func toSessionResponse(s review.Snapshot) dto.SessionResponse {
	out := dto.SessionResponse{
		ID:            s.ID,
		Surface:       string(s.Surface),
		Stream:        string(s.Stream),
		Mode:          string(s.Mode),
		Writable:      s.Writable,
		AllowedPlants: catalog.ToPlantResponses(s.Allowed),
		Entries:       make([]dto.EntryResponse, len(s.Rows)),
		Feed:          toFeedResponses(s.Feed),
	}
	if s.Plant != nil {
		out.Plant = &dto.PlantResponse{ID: s.Plant.ID, Code: s.Plant.Code, Name: s.Plant.Name}
	}
	for i, r := range s.Rows {
		out.Entries[i] = toEntryResponse(r)
	}
	return out
}

func toPatch(in dto.EntryPatchRequest) entrystate.Patch {
	p := entrystate.Patch{
		TagNo:      in.TagNo,
		CountedQty: in.CountedQty,
		PackCount:  in.PackCount,
		IsZero:     in.IsZero,
		IsCancel:   in.IsCancel,
	}
	if in.Status != nil {
		st := entity.EntryStatus(*in.Status)
		p.Status = &st
	}
	return p
}

func fieldNames(fs []entrystate.Field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

func toReportResponse(r *report.Report) dto.ReportResponse {
	out := dto.ReportResponse{
		Family:       string(r.Family),
		Key:          string(r.Key),
		Label:        r.Key.Label(),
		Stream:       string(r.Kind.Stream),
		Grain:        string(r.Kind.Grain),
		PlantCode:    r.Plant.Code,
		MaterialType: r.MaterialType,
		Rows:         make([]dto.ReportRowResponse, len(r.Rows)),
		Alert:        r.Alert,
	}
	for i, row := range r.Rows {
		out.Rows[i] = dto.ReportRowResponse{
			PlantCode:    row.PlantCode,
			LocationCode: row.LocationCode,
			MaterialName: row.MaterialName,
			EntryUOM:     row.EntryUOM,
			Status:       row.Status,
			TotalQty:     row.TotalQty,
			TotalPack:    row.TotalPack,
		}
	}
	return out
}
