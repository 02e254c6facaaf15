package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"maintenance-system/internal/authz"
	"maintenance-system/internal/repositories"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

type ReportServiceInterface interface {
	ExportRequests(ctx context.Context, actorID uint64, filter types.Filter) (*bytes.Buffer, error)
}

// ReportService выгружает список заявок в Excel. Выгрузка идёт через ту же
// область видимости, что и списочные методы: актор не выгрузит то, чего не видит.
type ReportService struct {
	requestRepo  repositories.RequestRepositoryInterface
	actorService ActorServiceInterface
	logger       *zap.Logger
}

func NewReportService(
	requestRepo repositories.RequestRepositoryInterface,
	actorService ActorServiceInterface,
	logger *zap.Logger,
) ReportServiceInterface {
	return &ReportService{
		requestRepo:  requestRepo,
		actorService: actorService,
		logger:       logger,
	}
}

var reportHeaders = []string{"ID", "Тема", "Тип", "Категория", "Состояние", "Команда", "Исполнитель", "Создатель", "Плановая дата", "Часы", "Создана"}

func (s *ReportService) ExportRequests(ctx context.Context, actorID uint64, filter types.Filter) (*bytes.Buffer, error) {
	actor, err := s.actorService.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanExportReports(actor) {
		return nil, apperrors.NewForbiddenError("выгрузка отчётов недоступна порталу")
	}

	// Выгружаем всё в пределах области видимости, без пагинации.
	filter.WithPagination = false
	requests, _, err := s.requestRepo.GetRequests(ctx, filter, authz.RequestScope(actor))
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Заявки"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, apperrors.NewInternalError("не удалось подготовить лист отчёта", err)
	}

	for col, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, apperrors.NewInternalError("не удалось записать заголовок отчёта", err)
		}
	}

	for i := range requests {
		req := &requests[i]
		row := i + 2

		technician := ""
		if req.Technician != nil {
			technician = req.Technician.Fio
		}
		creator := ""
		if req.Creator != nil {
			creator = req.Creator.Fio
		}
		teamName := ""
		if req.Team != nil {
			teamName = req.Team.Name
		}
		scheduled := ""
		if req.ScheduledDate != nil {
			scheduled = req.ScheduledDate.Format("2006-01-02")
		}
		duration := ""
		if req.DurationHours != nil {
			duration = fmt.Sprintf("%.1f", *req.DurationHours)
		}

		values := []interface{}{
			req.ID, req.Subject, req.Type, req.Category, string(req.State),
			teamName, technician, creator, scheduled, duration,
			req.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, apperrors.NewInternalError("не удалось записать строку отчёта", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.NewInternalError("не удалось сформировать файл отчёта", err)
	}

	s.logger.Info("сформирован отчёт по заявкам",
		zap.Uint64("actorId", actorID), zap.Int("rows", len(requests)))
	return buf, nil
}
