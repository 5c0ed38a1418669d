package mongo

import (
	"math"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

// liveFilter matches dealers that have not been soft-deleted.
func liveFilter() bson.M {
	return bson.M{"isDeleted": false}
}

// buildListFilter translates a listing query into a Mongo filter. Search text
// is escaped so it is matched literally.
func buildListFilter(f ports.ListDealersFilter) bson.M {
	filter := liveFilter()

	if f.Search != "" {
		pattern := ciRegex(regexp.QuoteMeta(f.Search))
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"phone": pattern},
		}
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Region != "" {
		filter["region"] = f.Region
	}
	return filter
}

func ciRegex(pattern string) bson.M {
	return bson.M{"$regex": pattern, "$options": "i"}
}

// buildListOptions sorts by the requested field with _id as tie-breaker so
// consecutive pages never overlap.
func buildListOptions(f ports.ListDealersFilter) *options.FindOptions {
	dir := int(f.SortOrder)
	if dir != 1 {
		dir = -1
	}
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}

	return options.Find().
		SetSort(bson.D{{Key: sortBy, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(skipFor(f.Page, f.Limit)).
		SetLimit(int64(f.Limit))
}

// skipFor returns the offset of page. An offset past int64 saturates, which
// yields an empty page instead of a negative skip.
func skipFor(page, limit int) int64 {
	if page <= 1 || limit <= 0 {
		return 0
	}
	prior := int64(page - 1)
	if prior > math.MaxInt64/int64(limit) {
		return math.MaxInt64
	}
	return prior * int64(limit)
}

// buildPatch returns the $set document for the provided fields only.
func buildPatch(p domain.DealerPatch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = domain.NormalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		set["phone"] = *p.Phone
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.OperatingHours != nil {
		set["operatingHours"] = *p.OperatingHours
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.Region != nil {
		set["region"] = *p.Region
	}
	return set
}

func regionPipeline() bson.A {
	return bson.A{
		bson.D{{Key: "$match", Value: liveFilter()}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$region"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}
