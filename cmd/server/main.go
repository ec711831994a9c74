package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"discussly/internal/community"
	"discussly/internal/content"
	"discussly/internal/identity"
	"discussly/internal/jwttoken"
	"discussly/internal/moderation"
	"discussly/internal/notification"
	"discussly/internal/platform/config"
	"discussly/internal/platform/httpserver"
	"discussly/internal/platform/logger"
	"discussly/internal/platform/metrics"
	"discussly/internal/platform/redis"
	httptransport "discussly/internal/transport/http"
	"discussly/internal/voting"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("ping database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var events notification.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := notification.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		events = kafka
	} else {
		events = notification.NewMemoryPublisher()
	}

	var (
		userStore              identity.UserStore
		banStore               identity.BanStore
		communityStore         community.CommunityStore
		subscriptionStore      community.SubscriptionStore
		postStore              content.PostStore
		commentStore           content.CommentStore
		postAttachmentStore    content.PostAttachmentStore
		commentAttachmentStore content.CommentAttachmentStore
		postVoteStore          voting.PostVoteStore
		commentVoteStore       voting.CommentVoteStore
	)
	if db != nil {
		userStore = identity.NewPostgresUserStore(db)
		banStore = identity.NewPostgresBanStore(db)
		communityStore = community.NewPostgresCommunityStore(db)
		subscriptionStore = community.NewPostgresSubscriptionStore(db)
		postStore = content.NewPostgresPostStore(db)
		commentStore = content.NewPostgresCommentStore(db)
		postAttachmentStore = content.NewPostgresPostAttachmentStore(db)
		commentAttachmentStore = content.NewPostgresCommentAttachmentStore(db)
		postVoteStore = voting.NewPostgresPostVoteStore(db)
		commentVoteStore = voting.NewPostgresCommentVoteStore(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		users := identity.NewInMemoryUserStore()
		userStore = users
		banStore = identity.NewInMemoryBanStore(users)
		communityStore = community.NewInMemoryCommunityStore()
		subscriptionStore = community.NewInMemorySubscriptionStore()
		postStore = content.NewInMemoryPostStore()
		commentStore = content.NewInMemoryCommentStore()
		postAttachmentStore = content.NewInMemoryPostAttachmentStore()
		commentAttachmentStore = content.NewInMemoryCommentAttachmentStore()
		postVoteStore = voting.NewInMemoryPostVoteStore()
		commentVoteStore = voting.NewInMemoryCommentVoteStore()
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, "discussly", "discussly-api")

	identitySvc := identity.NewService(userStore, identity.NewBcryptHasher(), events, log)
	communitySvc := community.NewService(communityStore, subscriptionStore, log)
	contentSvc := content.NewService(content.Deps{
		Posts:              postStore,
		Comments:           commentStore,
		PostAttachments:    postAttachmentStore,
		CommentAttachments: commentAttachmentStore,
		Users:              userStore,
		Communities:        communityStore,
		Subscriptions:      subscriptionStore,
	}, log)

	votingOpts := []voting.ServiceOption{}
	if rdb != nil {
		votingOpts = append(votingOpts, voting.WithScoreCache(voting.NewScoreCache(rdb.Client, 5*time.Minute)))
	}
	votingSvc := voting.NewService(voting.Deps{
		PostVotes:    postVoteStore,
		CommentVotes: commentVoteStore,
		Posts:        postStore,
		Comments:     commentStore,
		Users:        userStore,
	}, log, votingOpts...)
	moderationSvc := moderation.NewService(userStore, banStore, events, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:       httptransport.NewAuthHandler(identitySvc, tokens, cfg.TokenTTL, m, log),
		Users:      httptransport.NewUserHandler(identitySvc, log),
		Community:  httptransport.NewCommunityHandler(communitySvc, log),
		Content:    httptransport.NewContentHandler(contentSvc, m, log),
		Voting:     httptransport.NewVotingHandler(votingSvc, m, log),
		Moderation: httptransport.NewModerationHandler(moderationSvc, m, log),
		Tokens:     tokens,
		Logger:     log,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting discussly", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
