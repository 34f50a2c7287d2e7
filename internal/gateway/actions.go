package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/apperrors"
	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/internal/model"
)

// webhookLogLimit caps the diagnostics view.
const webhookLogLimit = 100

// defaultViewMode is what the calendar opens in before the user ever
// picks one.
const defaultViewMode = "week"

func decode(data json.RawMessage, into interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: action payload is required", apperrors.ErrBadRequest)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("%w: malformed action payload: %v", apperrors.ErrBadRequest, err)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, req Request) (interface{}, error) {
	switch req.Action {
	case "PING":
		return map[string]string{"status": "ok"}, nil

	case "GET_LINKS":
		return s.services.Contracts.List(ctx)

	case "GET_CLIENTS":
		return s.services.Contracts.Clients(ctx)

	case "CREATE":
		var payload struct {
			model.Contract
			GoogleCalendarID string `json:"googleCalendarId"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		return s.services.Contracts.Create(ctx, payload.Contract, payload.GoogleCalendarID)

	case "CREATE_SIMPLE_TRACKER":
		var payload struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		contract, err := s.services.Contracts.CreateSimpleTracker(ctx, payload.Name, payload.URL)
		if err != nil {
			return nil, err
		}
		return map[string]string{"id": contract.ID}, nil

	case "UPDATE_CLICK":
		var payload struct {
			ID string `json:"id"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		clicks, err := s.services.Contracts.RegisterClick(ctx, payload.ID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"id": payload.ID, "clicks": clicks}, nil

	case "UPDATE_WORK_MATERIALS":
		var payload struct {
			ID               string               `json:"id"`
			WorkMaterialURLs []model.WorkMaterial `json:"workMaterialUrls"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		if err := s.services.Contracts.UpdateWorkMaterials(ctx, payload.ID, payload.WorkMaterialURLs); err != nil {
			return nil, err
		}
		return map[string]string{"id": payload.ID}, nil

	case "UPDATE_DATES":
		var payload struct {
			ID        string `json:"id"`
			StartDate string `json:"startDate"`
			EndDate   string `json:"endDate"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		if err := s.services.Contracts.UpdateDates(ctx, payload.ID, payload.StartDate, payload.EndDate); err != nil {
			return nil, err
		}
		return map[string]string{"id": payload.ID}, nil

	case "UPDATE_CONTACT_INFO":
		var payload struct {
			ID          string `json:"id"`
			Phone       string `json:"phone"`
			Instagram   string `json:"instagram"`
			Email       string `json:"email"`
			CPF         string `json:"cpf"`
			CNPJ        string `json:"cnpj"`
			CompanyName string `json:"companyName"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		if err := s.services.Contracts.UpdateContactInfo(ctx, payload.ID, payload.Phone, payload.Instagram, payload.Email, payload.CPF, payload.CNPJ, payload.CompanyName); err != nil {
			return nil, err
		}
		return map[string]string{"id": payload.ID}, nil

	case "UPDATE_PACKAGE_INFO":
		var payload struct {
			ID          string `json:"id"`
			PackageInfo string `json:"packageInfo"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		if err := s.services.Contracts.UpdatePackageInfo(ctx, payload.ID, payload.PackageInfo); err != nil {
			return nil, err
		}
		return map[string]string{"id": payload.ID}, nil

	case "ARCHIVE_LINK":
		var payload struct {
			ID         string `json:"id"`
			IsArchived bool   `json:"isArchived"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		if err := s.services.Contracts.SetArchived(ctx, payload.ID, payload.IsArchived); err != nil {
			return nil, err
		}
		return map[string]string{"id": payload.ID}, nil

	case "DELETE_CONTRACT":
		var payload struct {
			ID string `json:"id"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		if err := s.services.Contracts.Delete(ctx, payload.ID); err != nil {
			return nil, err
		}
		return map[string]string{"id": payload.ID}, nil

	case "GET_REPORT":
		var payload struct {
			StartDate string `json:"startDate"`
			EndDate   string `json:"endDate"`
			LinkID    string `json:"linkId"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		return s.services.Contracts.Report(ctx, payload.StartDate, payload.EndDate, payload.LinkID)

	case "GET_CALENDAR_EVENTS":
		var payload struct {
			CalendarID string `json:"calendarId"`
			StartDate  string `json:"startDate"`
			EndDate    string `json:"endDate"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		return s.services.Agenda.Events(ctx, payload.CalendarID, payload.StartDate, payload.EndDate)

	case "GET_CALENDAR_GRID":
		var payload struct {
			CalendarID string `json:"calendarId"`
			ViewMode   string `json:"viewMode"`
			PivotDate  string `json:"pivotDate"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		return s.services.Agenda.Grid(ctx, payload.CalendarID, payload.ViewMode, payload.PivotDate)

	case "CREATE_CALENDAR_EVENT":
		var payload struct {
			CalendarID string `json:"calendarId"`
			model.AgendaItem
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		return s.services.Agenda.Create(ctx, payload.CalendarID, payload.AgendaItem)

	case "UPDATE_CALENDAR_EVENT":
		var payload struct {
			CalendarID string `json:"calendarId"`
			model.AgendaItem
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		return s.services.Agenda.Update(ctx, payload.CalendarID, payload.AgendaItem)

	case "DELETE_CALENDAR_EVENT":
		var payload struct {
			CalendarID string `json:"calendarId"`
			EventID    string `json:"eventId"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		if err := s.services.Agenda.Delete(ctx, payload.CalendarID, payload.EventID); err != nil {
			return nil, err
		}
		return map[string]bool{"deleted": true}, nil

	case "ADD_ROUTINE_TASK":
		var payload struct {
			CalendarID string `json:"calendarId"`
			model.RoutineTask
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		if err := s.services.Routines.AddTaskToCalendar(ctx, payload.RoutineTask, payload.CalendarID); err != nil {
			return nil, err
		}
		return map[string]bool{"scheduled": true}, nil

	case "SEND_HUMAN_MESSAGE":
		var payload struct {
			Phone   string `json:"phone"`
			Message string `json:"message"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		if err := s.services.Chats.SendMessage(ctx, payload.Phone, payload.Message); err != nil {
			return nil, err
		}
		return map[string]bool{"sent": true}, nil

	case "GET_CONVERSATIONS":
		return s.services.Chats.Conversations(ctx)

	case "SET_ATTENDANCE_MODE":
		var payload struct {
			Phone string `json:"phone"`
			Mode  string `json:"mode"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		if err := s.services.Chats.SetAttendanceMode(ctx, payload.Phone, payload.Mode); err != nil {
			return nil, err
		}
		return map[string]string{"mode": payload.Mode}, nil

	case "GET_CRM_LEADS":
		return s.services.Crm.Leads(ctx)

	case "GET_CRM_BOARD":
		return s.services.Crm.Columns(ctx)

	case "UPDATE_CRM_STAGE":
		var payload struct {
			Phone    string `json:"phone"` // carries the full lead id
			NewStage string `json:"newStage"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		columns, err := s.services.Crm.MoveStage(ctx, payload.Phone, payload.NewStage)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"stage": payload.NewStage, "columns": columns}, nil

	case "GET_SETTINGS":
		return s.services.Settings.Get(ctx)

	case "UPDATE_SETTINGS":
		var settings model.Settings
		if err := decode(req.Data, &settings); err != nil {
			return nil, err
		}
		if err := s.services.Settings.Update(ctx, settings); err != nil {
			return nil, err
		}
		return map[string]bool{"updated": true}, nil

	case "GET_ROUTINE_TASKS":
		return s.services.Routines.Doc(ctx)

	case "UPDATE_ROUTINE_TASKS":
		var doc model.RoutineDoc
		if err := decode(req.Data, &doc); err != nil {
			return nil, err
		}
		if err := s.services.Routines.UpdateDoc(ctx, doc); err != nil {
			return nil, err
		}
		return map[string]bool{"updated": true}, nil

	case "GET_TASK_COMPLETIONS":
		return s.services.Routines.Completions(ctx)

	case "TOGGLE_TASK_COMPLETION":
		var payload struct {
			TaskID string `json:"taskId"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		marks, err := s.services.Routines.ToggleCompletion(ctx, payload.TaskID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"taskId": payload.TaskID, "completions": marks}, nil

	case "GET_VIEW_MODE":
		return map[string]string{"mode": s.services.Routines.ViewMode(defaultViewMode)}, nil

	case "SET_VIEW_MODE":
		var payload struct {
			Mode string `json:"mode"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		if err := s.services.Routines.SetViewMode(payload.Mode); err != nil {
			return nil, err
		}
		return map[string]string{"mode": payload.Mode}, nil

	case "GET_TRANSACTIONS":
		return s.services.Ledger.List(ctx)

	case "ADD_TRANSACTION":
		var txn model.FinancialTransaction
		if err := decode(req.Data, &txn); err != nil {
			return nil, err
		}
		return s.services.Ledger.Add(ctx, txn)

	case "GET_WEBHOOK_LOGS":
		return s.services.Logs.FindRecent(ctx, webhookLogLimit)

	case "GENERATE_MESSAGE":
		var payload struct {
			CampaignName string `json:"campaignName"`
			Prompt       string `json:"prompt"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		text, err := s.services.Broadcast.GenerateMessage(ctx, payload.CampaignName, payload.Prompt)
		if err != nil {
			return nil, err
		}
		return map[string]string{"message": text}, nil

	case "START_BROADCAST":
		var payload struct {
			Message    string   `json:"message"`
			ContactIDs []string `json:"contactIds"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		id, err := s.services.Broadcast.Start(ctx, payload.Message, payload.ContactIDs)
		if err != nil {
			return nil, err
		}
		return map[string]string{"broadcastId": id}, nil

	case "GET_BROADCAST_STATUS":
		var payload struct {
			BroadcastID string `json:"broadcastId"`
		}
		if err := decode(req.Data, &payload); err != nil {
			return nil, err
		}
		return s.services.Broadcast.Status(payload.BroadcastID)

	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAction, req.Action)
	}
}
