package persistence

import (
	"sync"
	"time"
	"timeclock/internal/models"
	"timeclock/internal/persistence/interfaces"
	"timeclock/internal/providers"
	"timeclock/internal/services"
	"timeclock/internal/structures"

	"github.com/roylee0704/gron"
)

// Scheduler drives the auto-save loop: a fixed-period save of the
// roster state plus one guaranteed Persist on the shutdown path. This
// bounds data loss from an unclean shutdown to one interval of writes.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	roster  services.RosterServiceInterface
	manager *Manager
	metrics providers.MetricsProviderInterface
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func NewScheduler(config *structures.Config, logger providers.Logger, roster services.RosterServiceInterface, manager *Manager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		roster:  roster,
		manager: manager,
		metrics: metrics,
	}
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Persistence.SaveInterval

	s.cron.AddFunc(gron.Every(interval), func() {
		if err := s.save(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Auto-save failed, data at risk: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeApp, "Auto-saved application state")
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore loads the durable state into the roster service and surfaces
// an unexpected-shutdown notice when the last-save marker is stale.
func (s *Scheduler) Restore() error {
	if s.manager.DetectUnexpectedShutdown() {
		s.logger.Warnf(providers.TypeApp, "Stale last-save marker found, previous shutdown was not clean")
	}
	state := s.manager.Load(models.NewAppState())
	if s.manager.Recovered() {
		s.logger.Warnf(providers.TypeApp, "State recovered from a redundant copy")
	}
	s.roster.PutState(state)
	return nil
}

func (s *Scheduler) Persist() error {
	s.logger.Infof(providers.TypeApp, "Persisting application state...")
	if err := s.save(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func (s *Scheduler) save() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.manager.Save(s.roster.GetSnapshot())
	s.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		s.metrics.IncSaveFailures()
	}
	return err
}
