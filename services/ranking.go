package services

import (
	"context"
	"sort"
	"time"

	"github.com/themrgeek/AbodeX/models"
	"github.com/themrgeek/AbodeX/storage"
	"github.com/themrgeek/AbodeX/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// RankingService assigns earnings-percentile tags to hosts. It runs from a
// background ticker and from the explicit admin trigger, never from the
// read path.
type RankingService struct{}

func NewRankingService() *RankingService {
	return &RankingService{}
}

// TagForRank maps a 0-based rank among total hosts to a tag. The top 1% of
// earners are gold, the top 10% silver, the top 30% bronze.
func TagForRank(index, total int) string {
	if total <= 0 {
		return ""
	}
	percentile := float64(index+1) / float64(total)
	switch {
	case percentile <= 0.01:
		return models.TagGold
	case percentile <= 0.10:
		return models.TagSilver
	case percentile <= 0.30:
		return models.TagBronze
	default:
		return ""
	}
}

// AssignTags recomputes and persists every host's tag. Hosts sort by
// earnings descending; equal earnings break by host ID so reruns are
// deterministic.
func (rs *RankingService) AssignTags(ctx context.Context) error {
	cur, err := storage.Hosts.Find(ctx, bson.M{})
	if err != nil {
		return err
	}

	var hosts []models.Host
	if err := cur.All(ctx, &hosts); err != nil {
		return err
	}
	if len(hosts) == 0 {
		return nil
	}

	sort.SliceStable(hosts, func(i, j int) bool {
		if hosts[i].Earnings != hosts[j].Earnings {
			return hosts[i].Earnings > hosts[j].Earnings
		}
		return hosts[i].ID.Hex() < hosts[j].ID.Hex()
	})

	for index, host := range hosts {
		tag := TagForRank(index, len(hosts))
		if tag == host.Tag {
			continue
		}
		update := bson.M{"$set": bson.M{"tag": tag, "updatedAt": time.Now()}}
		if tag == "" {
			update = bson.M{
				"$unset": bson.M{"tag": ""},
				"$set":   bson.M{"updatedAt": time.Now()},
			}
		}
		if _, err := storage.Hosts.UpdateByID(ctx, host.ID, update); err != nil {
			return err
		}
	}
	return nil
}

// Start runs the tag job and the availability reconciliation pass on a
// fixed interval until ctx is cancelled.
func (rs *RankingService) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := rs.AssignTags(ctx); err != nil {
					utils.Logger().Errorw("host tag job failed", "error", err)
				}
				if err := ReconcileBookedWindows(ctx); err != nil {
					utils.Logger().Errorw("availability reconciliation failed", "error", err)
				}
			}
		}
	}()
}
