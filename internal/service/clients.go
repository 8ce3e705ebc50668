// clients.go — сервис клиентов.
// Список и карточка клиента синтезируются из проектов и отзывов владельца:
// выборка → свёртка (с кэшем по токену версии) → классификация → сводки.
// Создание клиента сопровождается созданием стартового проекта в одной транзакции.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"

	"github.com/bigkaa/clientportal/internal/domain/aggregate"
	"github.com/bigkaa/clientportal/internal/domain/model"
	"github.com/bigkaa/clientportal/internal/repository"
)

// Prometheus-метрики синтеза клиентов.
var (
	aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cp_aggregation_duration_seconds",
		Help:    "Длительность выборки и свёртки проектов в клиентов (при промахе кэша).",
		Buckets: prometheus.DefBuckets,
	})
	clientsSynthesized = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cp_clients_synthesized",
		Help:    "Количество клиентов в одном синтезированном списке.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)

// maxNameLength — ограничение длины имени клиента и названия проекта (VARCHAR(255)).
const maxNameLength = 255

// Transactor — выполнение операций над репозиториями в одной транзакции.
// Реализуется repository.TxRunner.
type Transactor interface {
	WithRepos(ctx context.Context, fn func(repos repository.Repos) error) error
}

// ClientInput — данные клиента от пользователя.
type ClientInput struct {
	Name  string
	Email *string
	Phone *string
}

// ClientCreateResult — созданный клиент и его стартовый проект.
type ClientCreateResult struct {
	Client  *model.Client
	Project *model.Project
}

// ClientService — сервис клиентов.
type ClientService struct {
	clients  repository.ClientRepository
	projects repository.ProjectRepository
	feedback repository.FeedbackRepository
	tx       Transactor
	cache    *AggregateCache
	logger   *slog.Logger
}

// NewClientService создаёт сервис клиентов.
// cache может быть nil — тогда свёртка выполняется на каждом запросе.
func NewClientService(
	clients repository.ClientRepository,
	projects repository.ProjectRepository,
	feedback repository.FeedbackRepository,
	tx Transactor,
	cache *AggregateCache,
	logger *slog.Logger,
) *ClientService {
	return &ClientService{
		clients:  clients,
		projects: projects,
		feedback: feedback,
		tx:       tx,
		cache:    cache,
		logger:   logger.With(slog.String("component", "client_service")),
	}
}

// List возвращает синтезированных клиентов владельца в порядке первого
// появления клиента среди проектов (по времени создания проекта).
func (s *ClientService) List(ctx context.Context, ownerID string, now time.Time) ([]aggregate.ClientSummary, error) {
	groups, err := s.groups(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contacts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := aggregate.Summarize(groups, contacts, now)
	clientsSynthesized.Observe(float64(len(result)))
	return result, nil
}

// Get возвращает сводку клиента по UUID или имени.
// ErrNotFound, если у клиента нет ни одного проекта.
func (s *ClientService) Get(ctx context.Context, ownerID, key string, now time.Time) (*aggregate.ClientSummary, error) {
	if id, err := uuid.Parse(key); err == nil {
		return s.getByID(ctx, ownerID, id.String(), now)
	}

	groups, err := s.groups(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	g, ok := aggregate.Find(groups, key)
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, aggregate.ErrNoProjects) //nolint:errorlint // намеренный двойной wrap
	}
	contacts, err := s.contacts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := aggregate.Summarize([]*aggregate.Group{g}, contacts, now)[0]
	return &summary, nil
}

// getByID строит сводку одного сохранённого клиента: выбираются только
// его проекты и статистика отзывов по ним, кэш свёртки не используется.
func (s *ClientService) getByID(ctx context.Context, ownerID, id string, now time.Time) (*aggregate.ClientSummary, error) {
	projects, err := s.projects.ListByClient(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("получение проектов клиента: %w", err)
	}
	stats, err := s.feedback.StatsByProjects(ctx, lo.Map(projects, func(p *model.Project, _ int) int64 { return p.ID }))
	if err != nil {
		return nil, fmt.Errorf("получение статистики отзывов: %w", err)
	}

	contacts := make(map[string]aggregate.Contact, 1)
	client, err := s.clients.GetByID(ctx, ownerID, id)
	switch {
	case err == nil:
		contacts[id] = aggregate.Contact{Email: client.Email, Phone: client.Phone}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("получение клиента: %w", err)
	}

	summary, err := aggregate.Client(id, lo.FromSlicePtr(projects), stats, contacts, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err) //nolint:errorlint // намеренный двойной wrap
	}
	return &summary, nil
}

// groups возвращает свёртку проектов владельца из кэша или строит её заново.
func (s *ClientService) groups(ctx context.Context, ownerID string) ([]*aggregate.Group, error) {
	snapshot, err := s.projects.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("получение версии данных: %w", err)
	}
	if groups, ok := s.cache.Get(ownerID, snapshot); ok {
		return groups, nil
	}

	start := time.Now()
	projects, err := s.projects.ListWithClient(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	stats, err := s.feedback.StatsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("получение статистики отзывов: %w", err)
	}
	groups := aggregate.Fold(lo.FromSlicePtr(projects), stats)
	aggregationDuration.Observe(time.Since(start).Seconds())

	s.cache.Set(ownerID, snapshot, groups)
	s.logger.Debug("Свёртка клиентов построена",
		slog.String("owner_id", ownerID),
		slog.Int("projects", len(projects)),
		slog.Int("clients", len(groups)),
	)
	return groups, nil
}

// contacts возвращает контакты сохранённых клиентов по их UUID.
func (s *ClientService) contacts(ctx context.Context, ownerID string) (map[string]aggregate.Contact, error) {
	clients, err := s.clients.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("получение клиентов: %w", err)
	}
	return lo.SliceToMap(clients, func(c *model.Client) (string, aggregate.Contact) {
		return c.ID, aggregate.Contact{Email: c.Email, Phone: c.Phone}
	}), nil
}

// Create создаёт клиента и стартовый проект «Project for {name}».
// Обе записи создаются в одной транзакции.
func (s *ClientService) Create(ctx context.Context, ownerID string, in ClientInput) (*ClientCreateResult, error) {
	in, err := normalizeClientInput(in)
	if err != nil {
		return nil, err
	}

	nameKey := model.NormalizeClientName(in.Name)
	if _, err := s.clients.GetByNameKey(ctx, ownerID, nameKey); err == nil {
		return nil, fmt.Errorf("%w: клиент '%s' уже существует", ErrConflict, in.Name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("проверка имени клиента: %w", err)
	}

	client := &model.Client{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Name:    in.Name,
		NameKey: nameKey,
		Email:   in.Email,
		Phone:   in.Phone,
	}
	project := &model.Project{
		OwnerID:     ownerID,
		Title:       "Project for " + in.Name,
		Description: lo.ToPtr("Initial project setup for " + in.Name),
		ClientID:    &client.ID,
		Status:      model.ProjectStatusActive,
		Priority:    model.PriorityMedium,
	}

	err = s.tx.WithRepos(ctx, func(repos repository.Repos) error {
		if err := repos.Clients.Create(ctx, client); err != nil {
			return err
		}
		return repos.Projects.Create(ctx, project)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: клиент '%s' уже существует", ErrConflict, in.Name)
		}
		return nil, fmt.Errorf("создание клиента: %w", err)
	}
	s.cache.Invalidate(ownerID)

	s.logger.Info("Клиент создан",
		slog.String("owner_id", ownerID),
		slog.String("client_id", client.ID),
		slog.String("name", client.Name),
		slog.Int64("project_id", project.ID),
	)
	return &ClientCreateResult{Client: client, Project: project}, nil
}

// Update обновляет имя и контакты клиента.
func (s *ClientService) Update(ctx context.Context, ownerID, id string, in ClientInput) (*model.Client, error) {
	in, err := normalizeClientInput(in)
	if err != nil {
		return nil, err
	}

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	client, err := s.clients.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapRepoError("получение клиента", err)
	}
	client.Name = in.Name
	client.NameKey = model.NormalizeClientName(in.Name)
	client.Email = in.Email
	client.Phone = in.Phone

	if err := s.clients.Update(ctx, client); err != nil {
		return nil, mapRepoError("обновление клиента", err)
	}
	s.cache.Invalidate(ownerID)

	s.logger.Info("Клиент обновлён",
		slog.String("owner_id", ownerID),
		slog.String("client_id", id),
	)
	return client, nil
}

// Delete удаляет клиента. Его проекты остаются без клиента.
func (s *ClientService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	if err := s.clients.Delete(ctx, ownerID, id); err != nil {
		return mapRepoError("удаление клиента", err)
	}
	s.cache.Invalidate(ownerID)

	s.logger.Info("Клиент удалён",
		slog.String("owner_id", ownerID),
		slog.String("client_id", id),
	)
	return nil
}

// normalizeClientInput проверяет и нормализует данные клиента.
// Пустые email и телефон превращаются в nil.
func normalizeClientInput(in ClientInput) (ClientInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: имя клиента обязательно", ErrValidation)
	}
	if len(in.Name) > maxNameLength {
		return in, fmt.Errorf("%w: имя клиента длиннее %d символов", ErrValidation, maxNameLength)
	}

	in.Email = trimToNil(in.Email)
	if in.Email != nil {
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			return in, fmt.Errorf("%w: некорректный email '%s'", ErrValidation, *in.Email)
		}
	}
	in.Phone = trimToNil(in.Phone)
	return in, nil
}

// trimToNil обрезает пробелы; пустая строка превращается в nil.
func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
