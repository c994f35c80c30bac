package validators

import "go.mongodb.org/mongo-driver/bson"

var ThingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"name",
			"time_zone",
			"avail_start",
			"avail_end",
			"max_length_mins",
			"book_ahead_days",
			"max_concurrent",
			"is_active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"icon": bson.M{
				"bsonType":  "string",
				"maxLength": 50,
			},

			"time_zone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"avail_start": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"avail_end": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"avail_weekends": bson.M{
				"bsonType": "bool",
			},

			"max_length_mins": bson.M{
				"bsonType": "int",
				"minimum":  30,
				"maximum":  1440,
			},

			"book_ahead_days": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  365,
			},

			"max_concurrent": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  100,
			},

			"buffer_mins": bson.M{
				"bsonType": "int",
				"minimum":  0,
				"maximum":  480,
			},

			"instructions": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
