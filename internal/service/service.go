package service

import (
	"time"

	"midnight_match/internal/config"
	"midnight_match/internal/repository"
	"midnight_match/internal/storage"
)

type Services struct {
	UserService  *UserService
	PhaseService *PhaseService
	PoolService  *PoolService
	MatchService *MatchService
	VoteService  *VoteService
	SessionRepo  repository.SessionRepository
	RoomGateway  *RoomGateway
	Scheduler    *Scheduler
}

func NewServices(repos *repository.Repositories, store storage.Store, cfg *config.Config) *Services {
	gateway := NewRoomGateway(repos.Session)

	userService := NewUserService(repos.User)
	phaseService := NewPhaseService(store)
	poolService := NewPoolService(store, repos.User, phaseService, gateway)
	matchService := NewMatchService(store, repos.Session, gateway,
		time.Duration(cfg.Match.SessionMinutes)*time.Minute,
		time.Duration(cfg.Match.MarkTTLHours)*time.Hour)
	voteService := NewVoteService(store, repos.Session, repos.User, gateway)
	scheduler := NewScheduler(phaseService, matchService, gateway,
		cfg.Match.OpenTime, cfg.Match.StartTime, cfg.Match.CloseTime)

	services := &Services{
		UserService:  userService,
		PhaseService: phaseService,
		PoolService:  poolService,
		MatchService: matchService,
		VoteService:  voteService,
		SessionRepo:  repos.Session,
		RoomGateway:  gateway,
		Scheduler:    scheduler,
	}
	gateway.SetHandler(services.dispatch)
	return services
}
