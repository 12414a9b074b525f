package services

import (
	"log/slog"

	"github.com/collegehub-edu/portal-service/internal/auth"
	"github.com/collegehub-edu/portal-service/internal/cache"
	"github.com/collegehub-edu/portal-service/internal/config"
	"github.com/collegehub-edu/portal-service/internal/events"
	"github.com/collegehub-edu/portal-service/internal/repositories"
	"github.com/collegehub-edu/portal-service/internal/validator"
)

// ServiceManager aggregates all domain services.
type ServiceManager interface {
	Auth() AuthService
	Approval() ApprovalService
	Timetable() TimetableService
	Mailer() MailerService
}

type serviceManager struct {
	authService      AuthService
	approvalService  ApprovalService
	timetableService TimetableService
	mailerService    MailerService
}

type ServiceManagerDeps struct {
	Repo        repositories.Repository
	Tokens      *auth.TokenService
	Bus         *events.Bus
	Sender      EmailSender
	StatusCache *cache.CacheHelper
	Config      *config.Config
	Logger      *slog.Logger
	Validator   *validator.Validator
}

func NewServiceManager(deps ServiceManagerDeps) ServiceManager {
	return &serviceManager{
		authService:      NewAuthService(deps.Repo, deps.Tokens, deps.Config.Auth, deps.Logger, deps.Validator),
		approvalService:  NewApprovalService(deps.Repo, deps.StatusCache, deps.Logger, deps.Validator),
		timetableService: NewTimetableService(deps.Repo, deps.Logger, deps.Validator),
		mailerService:    NewMailerService(deps.Repo, deps.Bus, deps.Sender, deps.Config.SMTP, deps.Logger, deps.Validator),
	}
}

func (sm *serviceManager) Auth() AuthService           { return sm.authService }
func (sm *serviceManager) Approval() ApprovalService   { return sm.approvalService }
func (sm *serviceManager) Timetable() TimetableService { return sm.timetableService }
func (sm *serviceManager) Mailer() MailerService       { return sm.mailerService }
