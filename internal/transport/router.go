// Package transport routes inbound chat updates to the bot core: commands,
// inline-button callbacks and free-text messages. An active conversation
// always gets first claim on an update; everything else falls through to the
// command table or the Q&A path.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hwoarang89/solomon-church-bot/internal/ai"
	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/internal/conversation"
	"github.com/hwoarang89/solomon-church-bot/internal/domain"
	"github.com/hwoarang89/solomon-church-bot/internal/service"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
)

const (
	replyStartFirst  = "Сначала отправьте /start."
	replyForbidden   = "Недостаточно прав."
	replyUnknownCmd  = "Неизвестная команда. Отправьте /help для списка команд."
	replyNothingToDo = "Нечего отменять."
)

// Router dispatches one update at a time per (actor, chat) scope; the
// conversation engine serializes scoped inputs internally, so Dispatch is
// safe for concurrent use.
type Router struct {
	auth          service.AuthService
	events        service.EventService
	registrations service.RegistrationService
	info          service.InfoService
	approvals     service.ApprovalService
	export        service.ExportService
	assistant     ai.Assistant
	engine        *conversation.Engine
	// bootstrapAdmin is promoted to super-admin on their first /start.
	bootstrapAdmin string
	tracer         trace.Tracer
	logger         *logger.Logger
}

// NewRouter creates a new Router
func NewRouter(
	auth service.AuthService,
	events service.EventService,
	registrations service.RegistrationService,
	info service.InfoService,
	approvals service.ApprovalService,
	export service.ExportService,
	assistant ai.Assistant,
	engine *conversation.Engine,
	bootstrapAdmin string,
	log *logger.Logger,
) *Router {
	return &Router{
		auth:           auth,
		events:         events,
		registrations:  registrations,
		info:           info,
		approvals:      approvals,
		export:         export,
		assistant:      assistant,
		engine:         engine,
		bootstrapAdmin: strings.TrimPrefix(bootstrapAdmin, "@"),
		tracer:         otel.Tracer("solomon.transport"),
		logger:         log,
	}
}

// Dispatch routes one inbound update and returns the replies for its chat.
// Out-of-band deliveries (reviewer fan-out, requester notices, broadcasts)
// go through the messenger inside the services, not through the return value.
func (r *Router) Dispatch(ctx context.Context, upd *chat.Update) ([]chat.Message, error) {
	ctx, span := r.tracer.Start(ctx, "dispatch",
		trace.WithAttributes(
			attribute.Int64("update.id", upd.UpdateID),
			attribute.Int64("update.user_id", upd.UserID),
			attribute.Bool("update.callback", upd.IsCallback()),
		))
	defer span.End()

	if upd.IsCallback() {
		return r.dispatchCallback(ctx, upd)
	}
	text := strings.TrimSpace(upd.Text)
	if text == "" {
		return nil, nil
	}
	if strings.HasPrefix(text, "/") && text != conversation.SkipCommand {
		return r.dispatchCommand(ctx, upd, text)
	}
	return r.dispatchText(ctx, upd, text)
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (r *Router) dispatchCommand(ctx context.Context, upd *chat.Update, text string) ([]chat.Message, error) {
	fields := strings.Fields(text)
	// Strip the bot-mention suffix some clients append.
	command, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch command {
	case "/start":
		return r.cmdStart(ctx, upd)
	case "/help":
		return r.cmdHelp()
	case "/events":
		return r.cmdEvents(ctx)
	case "/contact":
		return r.cmdContact(ctx)
	case "/apply_admin":
		return r.cmdApplyAdmin(ctx, upd)
	case "/admin":
		return r.cmdAdmin(ctx, upd)
	case "/pending":
		return r.cmdPending(ctx, upd)
	case "/broadcast":
		return r.cmdBroadcast(ctx, upd)
	case "/set_role":
		return r.cmdSetRole(ctx, upd, args)
	case "/cancel":
		return r.cmdCancel(ctx, upd)
	default:
		return reply(chat.Text(replyUnknownCmd)), nil
	}
}

func (r *Router) cmdStart(ctx context.Context, upd *chat.Update) ([]chat.Message, error) {
	user, err := r.auth.Identify(ctx, upd.UserID, upd.Username, upd.FullName)
	if err != nil {
		return nil, err
	}
	if r.bootstrapAdmin != "" && user.Username == r.bootstrapAdmin {
		if err := r.auth.EnsureSuperAdmin(ctx, r.bootstrapAdmin); err != nil {
			r.logger.Error("super-admin bootstrap failed", zap.Error(err))
		}
	}
	return reply(chat.Text(fmt.Sprintf(
		"Добро пожаловать, %s!\n\n"+
			"Я — Соломон, помощник нашей общины.\n\n"+
			"Вот что я умею:\n"+
			"/events — список мероприятий\n"+
			"/help — справка\n"+
			"/contact — контакты\n"+
			"/apply_admin — подать заявку на админство\n\n"+
			"Или просто напишите мне вопрос!",
		user.FullName))), nil
}

func (r *Router) cmdHelp() ([]chat.Message, error) {
	return reply(chat.Text(
		"Команды:\n" +
			"/start — начало работы\n" +
			"/events — список мероприятий\n" +
			"/contact — контакты общины\n" +
			"/apply_admin — подать заявку на админство\n" +
			"/admin — панель админа (для админов)\n\n" +
			"Вы также можете просто написать мне любой вопрос, и я постараюсь помочь!")), nil
}

func (r *Router) cmdEvents(ctx context.Context) ([]chat.Message, error) {
	events, err := r.events.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return reply(chat.Text("Сейчас нет активных мероприятий.")), nil
	}

	lines := []string{"Активные мероприятия:\n"}
	rows := make([][]chat.Button, 0, len(events))
	for _, e := range events {
		line := "  " + e.Title
		if !e.DateStart.IsZero() {
			line += " | " + e.DateStart.Format("2006-01-02")
		}
		if e.Time != "" {
			line += " | " + e.Time
		}
		if e.Place != "" {
			line += " | " + e.Place
		}
		lines = append(lines, line)
		rows = append(rows, chat.Row(chat.Button{
			Label: "Записаться: " + e.Title,
			Data:  fmt.Sprintf("reg_start:%d", e.ID),
		}))
	}
	return reply(chat.Text(strings.Join(lines, "\n")).WithButtons(rows...)), nil
}

func (r *Router) cmdContact(ctx context.Context) ([]chat.Message, error) {
	infos, err := r.info.ListByCategory(ctx, "contact")
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return reply(chat.Text(
			"Контактная информация пока не добавлена. Обратитесь к служителям лично.")), nil
	}
	parts := make([]string, 0, len(infos))
	for _, i := range infos {
		parts = append(parts, i.Title+": "+i.Content)
	}
	return reply(chat.Text(strings.Join(parts, "\n"))), nil
}

func (r *Router) cmdApplyAdmin(ctx context.Context, upd *chat.Update) ([]chat.Message, error) {
	user, err := r.auth.Authorize(ctx, upd.UserID)
	if errors.Is(err, service.ErrUnregistered) {
		return reply(chat.Text(replyStartFirst)), nil
	}
	if err != nil {
		return nil, err
	}

	req, err := r.approvals.SubmitAdminAccess(ctx, user, "", "Заявка на получение прав админа")
	if errors.Is(err, service.ErrAlreadyAdmin) {
		return reply(chat.Text("Вы уже являетесь администратором.")), nil
	}
	if err != nil {
		return nil, err
	}
	return reply(chat.Text(fmt.Sprintf(
		"Ваша заявка #%d отправлена на рассмотрение. Ожидайте.", req.ID))), nil
}

func (r *Router) cmdAdmin(ctx context.Context, upd *chat.Update) ([]chat.Message, error) {
	if _, msgs, err := r.authorize(ctx, upd, domain.RoleAdmin, domain.RoleSuperAdmin); msgs != nil || err != nil {
		return msgs, err
	}
	return reply(chat.Text("Панель администратора:").WithButtons(
		chat.Row(chat.Button{Label: "Создать мероприятие", Data: "adm:create_event"}),
		chat.Row(chat.Button{Label: "Список мероприятий", Data: "adm:list_events"}),
		chat.Row(chat.Button{Label: "Добавить информацию", Data: "adm:create_info"}),
		chat.Row(chat.Button{Label: "Список информации", Data: "adm:list_info"}),
		chat.Row(chat.Button{Label: "Текстовая команда (AI)", Data: "adm:text_cmd"}),
		chat.Row(chat.Button{Label: "Выгрузить в Google Sheets", Data: "adm:export_sheets"}),
	)), nil
}

func (r *Router) cmdPending(ctx context.Context, upd *chat.Update) ([]chat.Message, error) {
	if _, msgs, err := r.authorize(ctx, upd, domain.RoleSuperAdmin); msgs != nil || err != nil {
		return msgs, err
	}
	reqs, err := r.approvals.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return reply(chat.Text("Нет ожидающих заявок.")), nil
	}
	msgs := make([]chat.Message, 0, len(reqs))
	for _, req := range reqs {
		msgs = append(msgs, service.ReviewMessage(req))
	}
	return msgs, nil
}

func (r *Router) cmdBroadcast(ctx context.Context, upd *chat.Update) ([]chat.Message, error) {
	user, msgs, err := r.authorize(ctx, upd, domain.RoleAdmin, domain.RoleSuperAdmin)
	if msgs != nil || err != nil {
		return msgs, err
	}
	first, err := r.engine.Start(ctx, conversation.FlowBroadcast, user, upd.ChatID, nil)
	if err != nil {
		return nil, err
	}
	return reply(first), nil
}

func (r *Router) cmdSetRole(ctx context.Context, upd *chat.Update, args []string) ([]chat.Message, error) {
	if _, msgs, err := r.authorize(ctx, upd, domain.RoleSuperAdmin); msgs != nil || err != nil {
		return msgs, err
	}
	if len(args) < 2 {
		return reply(chat.Text("Использование: /set_role <username> <user|admin|super_admin>")), nil
	}
	username := strings.TrimPrefix(args[0], "@")
	role := domain.Role(strings.ToLower(args[1]))

	err := r.auth.SetRole(ctx, username, role)
	switch {
	case errors.Is(err, service.ErrInvalidRole):
		return reply(chat.Text(fmt.Sprintf(
			"Неизвестная роль: %s. Допустимые: user, admin, super_admin", args[1]))), nil
	case errors.Is(err, service.ErrUserNotFound):
		return reply(chat.Text(fmt.Sprintf("Пользователь @%s не найден.", username))), nil
	case err != nil:
		return nil, err
	}
	return reply(chat.Text(fmt.Sprintf("Роль @%s изменена на %s.", username, role))), nil
}

func (r *Router) cmdCancel(ctx context.Context, upd *chat.Update) ([]chat.Message, error) {
	msg, handled, err := r.engine.Cancel(ctx, upd.UserID, upd.ChatID)
	if err != nil {
		return nil, err
	}
	if !handled {
		return reply(chat.Text(replyNothingToDo)), nil
	}
	return reply(msg), nil
}

// ---------------------------------------------------------------------------
// Callbacks
// ---------------------------------------------------------------------------

func (r *Router) dispatchCallback(ctx context.Context, upd *chat.Update) ([]chat.Message, error) {
	// Confirm buttons belong to the active conversation.
	msg, handled, err := r.engine.HandleCallback(ctx, upd.UserID, upd.ChatID, upd.CallbackData)
	if err != nil {
		return nil, err
	}
	if handled {
		return reply(msg), nil
	}

	data := upd.CallbackData
	switch {
	case strings.HasPrefix(data, "reg_start:"):
		return r.cbRegistrationStart(ctx, upd, strings.TrimPrefix(data, "reg_start:"))
	case strings.HasPrefix(data, "adm:"):
		return r.cbAdminPanel(ctx, upd, strings.TrimPrefix(data, "adm:"))
	case strings.HasPrefix(data, "sa:"):
		return r.cbDecision(ctx, upd, strings.TrimPrefix(data, "sa:"))
	}
	r.logger.Warn("unhandled callback", zap.String("data", data))
	return nil, nil
}

func (r *Router) cbRegistrationStart(ctx context.Context, upd *chat.Update, rawID string) ([]chat.Message, error) {
	eventID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return reply(chat.Text("Мероприятие не найдено.")), nil
	}
	actor, err := r.auth.Identify(ctx, upd.UserID, upd.Username, upd.FullName)
	if err != nil {
		return nil, err
	}

	event, err := r.events.Get(ctx, eventID)
	if errors.Is(err, service.ErrEventNotFound) {
		return reply(chat.Text("Мероприятие не найдено.")), nil
	}
	if err != nil {
		return nil, err
	}

	switch err := r.registrations.CheckCapacity(ctx, eventID, actor.TelegramID); {
	case errors.Is(err, service.ErrCapacityExceeded):
		return reply(chat.Text(fmt.Sprintf(
			"К сожалению, мест на «%s» больше нет.", event.Title))), nil
	case errors.Is(err, service.ErrEventNotActive):
		return reply(chat.Text("Запись на это мероприятие недоступна.")), nil
	case err != nil:
		return nil, err
	}

	first, err := r.engine.Start(ctx, conversation.FlowRegistration, actor, upd.ChatID,
		conversation.RegistrationSeed(event, actor))
	if err != nil {
		return nil, err
	}
	return reply(first), nil
}

func (r *Router) cbAdminPanel(ctx context.Context, upd *chat.Update, action string) ([]chat.Message, error) {
	user, msgs, err := r.authorize(ctx, upd, domain.RoleAdmin, domain.RoleSuperAdmin)
	if msgs != nil || err != nil {
		return msgs, err
	}

	switch {
	case action == "create_event":
		return r.startFlow(ctx, conversation.FlowEventCreation, user, upd.ChatID)
	case action == "create_info":
		return r.startFlow(ctx, conversation.FlowInfoCreation, user, upd.ChatID)
	case action == "text_cmd":
		return r.startFlow(ctx, conversation.FlowAICommand, user, upd.ChatID)
	case action == "list_events":
		return r.cbListEvents(ctx)
	case action == "list_info":
		return r.cbListInfo(ctx)
	case action == "export_sheets":
		return r.cbExportSheets(ctx)
	case strings.HasPrefix(action, "event_detail:"):
		return r.cbEventDetail(ctx, numericSuffix(action))
	case strings.HasPrefix(action, "event_activate:"):
		return r.cbEventActivate(ctx, user, numericSuffix(action))
	case strings.HasPrefix(action, "event_archive:"):
		return r.cbEventArchive(ctx, numericSuffix(action))
	case strings.HasPrefix(action, "event_regs:"):
		return r.cbEventRegistrations(ctx, numericSuffix(action))
	case strings.HasPrefix(action, "info_delete:"):
		return r.cbInfoDelete(ctx, numericSuffix(action))
	}
	r.logger.Warn("unhandled admin callback", zap.String("action", action))
	return nil, nil
}

func (r *Router) startFlow(ctx context.Context, kind conversation.FlowKind, user *domain.User, chatID int64) ([]chat.Message, error) {
	first, err := r.engine.Start(ctx, kind, user, chatID, nil)
	if err != nil {
		return nil, err
	}
	return reply(first), nil
}

func (r *Router) cbListEvents(ctx context.Context) ([]chat.Message, error) {
	pending, err := r.events.ListByStatus(ctx, domain.EventPending)
	if err != nil {
		return nil, err
	}
	active, err := r.events.ListByStatus(ctx, domain.EventActive)
	if err != nil {
		return nil, err
	}
	all := append(pending, active...)
	if len(all) == 0 {
		return reply(chat.Text("Нет мероприятий.")), nil
	}

	rows := make([][]chat.Button, 0, len(all))
	for _, e := range all {
		label := fmt.Sprintf("%s (%s)", e.Title, e.DateStart.Format("2006-01-02"))
		if e.Status == domain.EventPending {
			label = "[ожид] " + label
		}
		rows = append(rows, chat.Row(chat.Button{
			Label: label,
			Data:  fmt.Sprintf("adm:event_detail:%d", e.ID),
		}))
	}
	return reply(chat.Text("Мероприятия:").WithButtons(rows...)), nil
}

func (r *Router) cbEventDetail(ctx context.Context, eventID int64) ([]chat.Message, error) {
	event, err := r.events.Get(ctx, eventID)
	if errors.Is(err, service.ErrEventNotFound) {
		return reply(chat.Text("Мероприятие не найдено.")), nil
	}
	if err != nil {
		return nil, err
	}
	count, err := r.registrations.Count(ctx, eventID)
	if err != nil {
		return nil, err
	}

	maxText := "без ограничений"
	if event.HasCapacityLimit() {
		maxText = strconv.Itoa(event.MaxParticipants)
	}
	text := fmt.Sprintf(
		"Мероприятие: %s\nСтатус: %s\nДата: %s\nВремя: %s\nМесто: %s\nОписание: %s\n"+
			"Макс. участников: %s\nЗарегистрировано: %d\nСоздал: @%s",
		event.Title, event.Status, event.DateStart.Format("2006-01-02"),
		orDash(event.Time), orDash(event.Place), orDash(event.Description),
		maxText, count, orDash(event.CreatedBy))

	var rows [][]chat.Button
	if event.Status == domain.EventPending {
		rows = append(rows, chat.Row(chat.Button{
			Label: "Активировать", Data: fmt.Sprintf("adm:event_activate:%d", eventID)}))
	}
	if event.Status == domain.EventActive {
		rows = append(rows, chat.Row(chat.Button{
			Label: "Архивировать", Data: fmt.Sprintf("adm:event_archive:%d", eventID)}))
	}
	rows = append(rows, chat.Row(chat.Button{
		Label: "Список записей", Data: fmt.Sprintf("adm:event_regs:%d", eventID)}))

	return reply(chat.Text(text).WithButtons(rows...)), nil
}

// cbEventActivate activates directly for a super-admin; an admin's press
// files an activation request instead.
func (r *Router) cbEventActivate(ctx context.Context, user *domain.User, eventID int64) ([]chat.Message, error) {
	if user.Role == domain.RoleSuperAdmin {
		event, err := r.events.Activate(ctx, eventID)
		if errors.Is(err, service.ErrEventNotFound) {
			return reply(chat.Text("Ошибка активации.")), nil
		}
		if err != nil {
			return nil, err
		}
		return reply(chat.Text(fmt.Sprintf("Мероприятие «%s» активировано.", event.Title))), nil
	}

	event, err := r.events.Get(ctx, eventID)
	if errors.Is(err, service.ErrEventNotFound) {
		return reply(chat.Text("Мероприятие не найдено.")), nil
	}
	if err != nil {
		return nil, err
	}
	req, err := r.approvals.SubmitEventActivation(ctx, user, event)
	if err != nil {
		return nil, err
	}
	return reply(chat.Text(fmt.Sprintf(
		"Заявка #%d на активацию «%s» отправлена супер-админу.", req.ID, event.Title))), nil
}

func (r *Router) cbEventArchive(ctx context.Context, eventID int64) ([]chat.Message, error) {
	event, err := r.events.Archive(ctx, eventID)
	if errors.Is(err, service.ErrEventNotFound) {
		return reply(chat.Text("Ошибка архивации.")), nil
	}
	if err != nil {
		return nil, err
	}
	return reply(chat.Text(fmt.Sprintf("Мероприятие «%s» архивировано.", event.Title))), nil
}

func (r *Router) cbEventRegistrations(ctx context.Context, eventID int64) ([]chat.Message, error) {
	event, err := r.events.Get(ctx, eventID)
	if errors.Is(err, service.ErrEventNotFound) {
		return reply(chat.Text("Мероприятие не найдено.")), nil
	}
	if err != nil {
		return nil, err
	}
	regs, err := r.registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return reply(chat.Text(fmt.Sprintf("На «%s» пока нет записей.", event.Title))), nil
	}

	lines := []string{fmt.Sprintf("Записи на «%s» (%d):\n", event.Title, len(regs))}
	for i, reg := range regs {
		lines = append(lines, fmt.Sprintf("%d. %s | @%s | тел: %s | ур: %s",
			i+1, reg.FullName, orDash(reg.Username), orDash(reg.Phone), orDash(reg.Level)))
	}
	return reply(chat.Text(strings.Join(lines, "\n"))), nil
}

func (r *Router) cbListInfo(ctx context.Context) ([]chat.Message, error) {
	infos, err := r.info.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return reply(chat.Text("Информация не добавлена.")), nil
	}

	lines := []string{"Информация:\n"}
	rows := make([][]chat.Button, 0, len(infos))
	for _, i := range infos {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", i.Category, i.Title, truncate(i.Content, 80)))
		rows = append(rows, chat.Row(chat.Button{
			Label: "Удалить: " + truncate(i.Title, 30),
			Data:  fmt.Sprintf("adm:info_delete:%d", i.ID),
		}))
	}
	return reply(chat.Text(strings.Join(lines, "\n")).WithButtons(rows...)), nil
}

func (r *Router) cbInfoDelete(ctx context.Context, infoID int64) ([]chat.Message, error) {
	ok, err := r.info.Delete(ctx, infoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return reply(chat.Text("Не удалось удалить.")), nil
	}
	return reply(chat.Text("Информация удалена.")), nil
}

func (r *Router) cbExportSheets(ctx context.Context) ([]chat.Message, error) {
	summary, err := r.export.ExportAll(ctx)
	if errors.Is(err, service.ErrExportNotConfigured) {
		return reply(chat.Text(
			"Google Sheets не настроен (нет GOOGLE_SHEETS_ID или GOOGLE_CREDENTIALS_JSON).")), nil
	}
	if err != nil {
		r.logger.Error("sheets export failed", zap.Error(err))
		return reply(chat.Text("Ошибка экспорта. Проверьте настройки.")), nil
	}
	return reply(chat.Text(summary)), nil
}

func (r *Router) cbDecision(ctx context.Context, upd *chat.Update, data string) ([]chat.Message, error) {
	reviewer, msgs, err := r.authorize(ctx, upd, domain.RoleSuperAdmin)
	if msgs != nil || err != nil {
		return msgs, err
	}

	verdict, rawID, ok := strings.Cut(data, ":")
	requestID, convErr := strconv.ParseInt(rawID, 10, 64)
	if !ok || convErr != nil {
		return nil, nil
	}
	outcome := domain.RequestRejected
	if verdict == "approve" {
		outcome = domain.RequestApproved
	}

	req, err := r.approvals.Decide(ctx, requestID, outcome, reviewer)
	if errors.Is(err, service.ErrAlreadyDecided) || errors.Is(err, service.ErrRequestNotFound) {
		return reply(chat.Text(fmt.Sprintf(
			"Заявка #%d уже обработана или не найдена.", requestID))), nil
	}
	if err != nil {
		return nil, err
	}

	statusText := "отклонена"
	if outcome == domain.RequestApproved {
		statusText = "одобрена"
	}
	return reply(chat.Text(fmt.Sprintf(
		"Заявка #%d (%s) %s.\nЗаявитель: @%s", req.ID, req.Type, statusText, req.Username))), nil
}

// ---------------------------------------------------------------------------
// Free text
// ---------------------------------------------------------------------------

func (r *Router) dispatchText(ctx context.Context, upd *chat.Update, text string) ([]chat.Message, error) {
	msg, handled, err := r.engine.HandleText(ctx, upd.UserID, upd.ChatID, text)
	if err != nil {
		return nil, err
	}
	if handled {
		return reply(msg), nil
	}

	user, err := r.auth.Identify(ctx, upd.UserID, upd.Username, upd.FullName)
	if err != nil {
		return nil, err
	}
	knowledge, err := r.info.GroundingContext(ctx)
	if err != nil {
		r.logger.Error("grounding context failed", zap.Error(err))
		knowledge = ""
	}
	answer, err := r.assistant.Answer(ctx, text, user.FullName, knowledge)
	if err != nil {
		return nil, err
	}

	intent := ai.ExtractRegistrationIntent(answer)
	if !intent.Detected {
		return reply(chat.Text(answer)), nil
	}

	events, err := r.events.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return reply(chat.Text("Сейчас нет активных мероприятий для записи.")), nil
	}
	rows := make([][]chat.Button, 0, len(events))
	for _, e := range events {
		rows = append(rows, chat.Row(chat.Button{
			Label: e.Title,
			Data:  fmt.Sprintf("reg_start:%d", e.ID),
		}))
	}
	lead := intent.CleanReply
	if lead == "" {
		lead = "Выберите мероприятие для записи:"
	}
	return reply(chat.Text(lead).WithButtons(rows...)), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// authorize resolves the actor and maps auth failures to user-facing texts.
// A non-nil message slice means the caller should return it as the reply.
func (r *Router) authorize(ctx context.Context, upd *chat.Update, roles ...domain.Role) (*domain.User, []chat.Message, error) {
	user, err := r.auth.Authorize(ctx, upd.UserID, roles...)
	switch {
	case errors.Is(err, service.ErrUnregistered):
		return nil, reply(chat.Text(replyStartFirst)), nil
	case errors.Is(err, service.ErrForbidden):
		return nil, reply(chat.Text(replyForbidden)), nil
	case err != nil:
		return nil, nil, err
	}
	return user, nil, nil
}

func reply(msgs ...chat.Message) []chat.Message {
	return msgs
}

func numericSuffix(s string) int64 {
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return 0
	}
	id, _ := strconv.ParseInt(s[idx+1:], 10, 64)
	return id
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
