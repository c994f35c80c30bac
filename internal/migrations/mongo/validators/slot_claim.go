package validators

import "go.mongodb.org/mongo-driver/bson"

// SlotClaimValidator guards the claim documents backing the non-overlap
// constraint. The _id is "<thing_id>|<RFC3339 UTC half-hour>", so uniqueness
// of claims is uniqueness of occupied half-hours.
var SlotClaimValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"thing_id",
			"reservation_id",
			"slot_start",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  `^[0-9a-f]{24}\|`,
			},

			"thing_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"reservation_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"slot_start": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
