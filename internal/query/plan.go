package query

import (
	"strings"
	"time"

	"github.com/newsdesk-api/internal/models"
)

// ArticleColumns is the select list shared by every article listing.
// The column order matches repository.scanArticle.
const ArticleColumns = `a.id, a.author_id, a.title, a.description, a.content, a.category, a.region,
		a.tags, a.image, a.status, a.rejection_reason, a.is_top_news, a.views_count,
		a.publish_date, a.created_at, a.updated_at,
		au.name AS author_name, au.email AS author_email`

const articleFrom = "FROM articles a JOIN authors au ON au.id = a.author_id"

// Plan is a compiled count + page statement pair.
// CountArgs is a prefix of PageArgs; the two are executed separately.
type Plan struct {
	CountSQL  string
	CountArgs []interface{}
	PageSQL   string
	PageArgs  []interface{}
	Page      int
	Limit     int
}

// PlanFilters compiles a filtered listing. An explicit sort always wins;
// otherwise a search is ordered by relevance and everything else by
// fallbackSort.
func PlanFilters(f models.ArticleFilters, fallbackSort string) Plan {
	page, limit := models.NormalizePage(f.Page, f.Limit)

	args := &Args{}
	where := CompileFilters(f).Where(args)
	countArgs := args.Values()

	var orderBy string
	search := strings.TrimSpace(f.Search)
	if search != "" && f.SortBy == "" {
		orderBy = TextRank(search, args) + " DESC, a.publish_date DESC NULLS LAST, a.id DESC"
	} else {
		orderBy = ResolveSort(f.SortBy, f.SortOrder, fallbackSort).OrderBy()
	}

	pageSQL := "SELECT " + ArticleColumns + "\n\t\t" + articleFrom + joinWhere(where) +
		"\n\t\tORDER BY " + orderBy +
		"\n\t\tLIMIT " + args.Bind(limit) + " OFFSET " + args.Bind(models.Offset(page, limit))

	return Plan{
		CountSQL:  "SELECT COUNT(*) " + articleFrom + joinWhere(where),
		CountArgs: countArgs,
		PageSQL:   pageSQL,
		PageArgs:  args.Values(),
		Page:      page,
		Limit:     limit,
	}
}

// PlanTrending compiles a trending page for the formula as of now.
// The page select carries three extra columns: trending_score,
// views_per_hour and hours_since_publish.
func PlanTrending(f Formula, now time.Time, authorID *int64, page, limit int) Plan {
	page, limit = models.NormalizePage(page, limit)

	args := &Args{}
	where := f.Eligibility(now, authorID).Where(args)
	countArgs := args.Values()

	score := f.Expression(now, args)
	viewsPerHour, hoursSince := Diagnostics(now, args)

	pageSQL := "SELECT " + ArticleColumns + ",\n\t\t" +
		score + " AS trending_score,\n\t\t" +
		viewsPerHour + " AS views_per_hour,\n\t\t" +
		hoursSince + " AS hours_since_publish\n\t\t" +
		articleFrom + joinWhere(where) +
		"\n\t\tORDER BY trending_score DESC, a.id DESC" +
		"\n\t\tLIMIT " + args.Bind(limit) + " OFFSET " + args.Bind(models.Offset(page, limit))

	return Plan{
		CountSQL:  "SELECT COUNT(*) " + articleFrom + joinWhere(where),
		CountArgs: countArgs,
		PageSQL:   pageSQL,
		PageArgs:  args.Values(),
		Page:      page,
		Limit:     limit,
	}
}

// PlanTrendingTags compiles the tag leaderboard over trending-eligible
// articles: tags ordered by summed views, then article count, then name.
func PlanTrendingTags(f Formula, now time.Time, limit int) (string, []interface{}) {
	_, limit = models.NormalizePage(1, limit)

	args := &Args{}
	where := f.Eligibility(now, nil).Where(args)

	sql := "SELECT t.tag, COUNT(*) AS article_count, COALESCE(SUM(a.views_count), 0) AS total_views" +
		"\n\t\tFROM articles a CROSS JOIN LATERAL jsonb_array_elements_text(COALESCE(a.tags, '[]'::jsonb)) AS t(tag)" +
		joinWhere(where) +
		"\n\t\tGROUP BY t.tag" +
		"\n\t\tORDER BY total_views DESC, article_count DESC, t.tag ASC" +
		"\n\t\tLIMIT " + args.Bind(limit)

	return sql, args.Values()
}

func joinWhere(where string) string {
	if where == "" {
		return ""
	}
	return "\n\t\t" + where
}
