package service

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Scheduler 依牆鐘時間驅動每晚的三次階段切換：
// OPEN 設置 LOBBY 並清空佇列、START 設置 MATCHING 並同步執行配對、
// STOP 設置 CLOSED。行程重啟後對準下一次未來的觸發時刻，
// 不補發錯過的觸發
type Scheduler struct {
	phases  *PhaseService
	matches *MatchService
	gateway *RoomGateway

	openAt  string // "HH:MM"
	startAt string
	closeAt string

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(phases *PhaseService, matches *MatchService, gateway *RoomGateway, openAt, startAt, closeAt string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		phases:  phases,
		matches: matches,
		gateway: gateway,
		openAt:  openAt,
		startAt: startAt,
		closeAt: closeAt,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start 啟動三個每日觸發循環
func (s *Scheduler) Start() error {
	firings := []struct {
		at  string
		run func()
	}{
		{s.openAt, s.openLobby},
		{s.startAt, s.startMatching},
		{s.closeAt, s.closePhase},
	}

	for _, firing := range firings {
		// 先驗證時刻格式，避免循環啟動後才發現設定錯誤
		if _, err := untilNext(firing.at, time.Now()); err != nil {
			return err
		}
		go s.loop(firing.at, firing.run)
	}
	return nil
}

// Stop 停止所有觸發循環
func (s *Scheduler) Stop() {
	s.cancel()
}

// loop 單一觸發時刻的循環：等到下一次該時刻、執行、再重新對準
func (s *Scheduler) loop(at string, run func()) {
	for {
		wait, err := untilNext(at, time.Now())
		if err != nil {
			log.Printf("scheduler: bad firing time %q: %v", at, err)
			return
		}

		timer := time.NewTimer(wait)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			run()
		}
	}
}

// untilNext 計算距離下一次 "HH:MM" 時刻的時長，
// 今天的該時刻已過則排到明天
func untilNext(at string, now time.Time) (time.Duration, error) {
	parsed, err := time.Parse("15:04", at)
	if err != nil {
		return 0, fmt.Errorf("invalid firing time %q: %w", at, err)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now), nil
}

// openLobby 開放今晚的配對：清空殘留的佇列與房間、設置 LOBBY、廣播
func (s *Scheduler) openLobby() {
	ctx := s.ctx
	if err := s.matches.ClearQueues(ctx); err != nil {
		log.Printf("scheduler: clear queues failed: %v", err)
	}
	s.gateway.ResetRooms()

	if err := s.phases.Set(ctx, PhaseLobby); err != nil {
		log.Printf("scheduler: set phase LOBBY failed: %v", err)
		return
	}
	s.gateway.BroadcastAll(NewPhaseEvent(PhaseLobby))
	log.Printf("scheduler: lobby open")
}

// startMatching 切換到 MATCHING 並同步執行配對，
// 配對完成後才回到閒置
func (s *Scheduler) startMatching() {
	ctx := s.ctx
	if err := s.phases.Set(ctx, PhaseMatching); err != nil {
		log.Printf("scheduler: set phase MATCHING failed: %v", err)
		return
	}
	s.gateway.BroadcastAll(NewPhaseEvent(PhaseMatching))
	log.Printf("scheduler: matching started")

	s.matches.Run(ctx)
	log.Printf("scheduler: matching finished")
}

// closePhase 結束今晚的配對階段
func (s *Scheduler) closePhase() {
	if err := s.phases.Set(s.ctx, PhaseClosed); err != nil {
		log.Printf("scheduler: set phase CLOSED failed: %v", err)
		return
	}
	s.gateway.BroadcastAll(NewPhaseEvent(PhaseClosed))
	log.Printf("scheduler: phase closed")
}
