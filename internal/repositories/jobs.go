package repositories

import (
	"context"
	"strings"
	"sync"

	"github.com/jobscout/jobscout/internal/domain/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const maxQueryLimit = 200

// ErrJobNotFound is returned when no stored job carries the requested id.
var ErrJobNotFound = errors.New("job not found")

// JobFilter narrows store queries. Empty fields are ignored.
type JobFilter struct {
	Keyword  string
	Location string
	Domain   string
	Source   string
}

type Jobs struct {
	db *gorm.DB

	// serializes concurrent upserts so the per-key merge rule is applied
	// read-then-write without a race
	writeMu sync.Mutex
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

// Upsert stores canonical jobs. A job whose identity key already exists is
// merge-updated: non-absent incoming values win, absent values never erase
// stored ones, created_at stays untouched. Returns the number of newly
// created identity keys.
func (repo *Jobs) Upsert(ctx context.Context, jobs []models.Job) (int, error) {

	repo.writeMu.Lock()
	defer repo.writeMu.Unlock()

	inserted := 0
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range jobs {
			created, err := upsertOne(tx, jobs[i])
			if err != nil {
				return err
			}
			if created {
				inserted++
			}
		}
		return nil
	})

	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func upsertOne(tx *gorm.DB, job models.Job) (created bool, err error) {

	var existing models.Job
	err = tx.Where("identity_key = ?", job.IdentityKey).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Create(&job).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	updates := mergeUpdates(job)
	if err := tx.Model(&models.Job{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
		return false, err
	}
	return false, nil
}

func mergeUpdates(incoming models.Job) map[string]any {

	updates := map[string]any{"scraped_at": incoming.ScrapedAt}

	set := func(column, value string) {
		if value != "" {
			updates[column] = value
		}
	}
	set("title", incoming.Title)
	set("company", incoming.Company)
	set("location", incoming.Location)
	set("experience_text", incoming.ExperienceText)
	set("salary_text", incoming.SalaryText)
	set("description", incoming.Description)
	set("url", incoming.URL)
	set("domain", incoming.Domain)
	set("keyword", incoming.Keyword)

	return updates
}

func (repo *Jobs) Search(ctx context.Context, filter JobFilter, limit int) ([]models.Job, error) {

	query := repo.db.WithContext(ctx).Model(&models.Job{})

	if filter.Keyword != "" {
		pattern := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where("keyword LIKE ? OR LOWER(title) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}
	if filter.Domain != "" {
		query = query.Where("domain = ?", strings.ToLower(filter.Domain))
	}
	if filter.Source != "" {
		query = query.Where("source = ?", strings.ToLower(filter.Source))
	}

	var jobs []models.Job
	err := query.Order("created_at DESC, id DESC").Limit(clampLimit(limit)).Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (repo *Jobs) ByID(ctx context.Context, id int) (*models.Job, error) {

	var job models.Job
	err := repo.db.WithContext(ctx).First(&job, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (repo *Jobs) ByDomain(ctx context.Context, domain string, limit int) ([]models.Job, error) {
	return repo.Search(ctx, JobFilter{Domain: domain}, limit)
}

func (repo *Jobs) Recent(ctx context.Context, limit int) ([]models.Job, error) {
	return repo.Search(ctx, JobFilter{}, limit)
}

func (repo *Jobs) Stats(ctx context.Context) (models.JobStats, error) {

	stats := models.JobStats{
		CountsBySource: map[string]int64{},
		CountsByDomain: map[string]int64{},
	}

	if err := repo.db.WithContext(ctx).Model(&models.Job{}).Count(&stats.TotalJobs).Error; err != nil {
		return stats, err
	}

	type groupCount struct {
		Key   string
		Count int64
	}

	var bySource []groupCount
	err := repo.db.WithContext(ctx).Model(&models.Job{}).
		Select("source as key, count(*) as count").Group("source").Scan(&bySource).Error
	if err != nil {
		return stats, err
	}
	for _, row := range bySource {
		stats.CountsBySource[row.Key] = row.Count
	}

	var byDomain []groupCount
	err = repo.db.WithContext(ctx).Model(&models.Job{}).
		Select("domain as key, count(*) as count").Where("domain <> ''").Group("domain").Scan(&byDomain).Error
	if err != nil {
		return stats, err
	}
	for _, row := range byDomain {
		stats.CountsByDomain[row.Key] = row.Count
	}

	return stats, nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}
