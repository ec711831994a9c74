// Package metrics registers the Prometheus counters the services bump on
// their hot paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	UsersRegistered prometheus.Counter
	PostsCreated    prometheus.Counter
	CommentsCreated prometheus.Counter
	VotesCast       prometheus.Counter
	UsersBanned     prometheus.Counter
}

// New creates all metrics and registers them on reg. Callers that scrape
// through the default /metrics endpoint pass prometheus.DefaultRegisterer;
// tests pass a fresh registry so repeated construction never collides.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "discussly_users_registered_total",
			Help: "Total number of accounts registered",
		}),
		PostsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "discussly_posts_created_total",
			Help: "Total number of posts created",
		}),
		CommentsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "discussly_comments_created_total",
			Help: "Total number of comments created",
		}),
		VotesCast: f.NewCounter(prometheus.CounterOpts{
			Name: "discussly_votes_cast_total",
			Help: "Total number of votes cast or changed",
		}),
		UsersBanned: f.NewCounter(prometheus.CounterOpts{
			Name: "discussly_users_banned_total",
			Help: "Total number of ban actions taken",
		}),
	}
}
