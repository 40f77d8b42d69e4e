package model

import (
	"github.com/estateshq/estates-backend/estates-notification/cache"
	"github.com/estateshq/estates-backend/estates-notification/database"
	"github.com/estateshq/estates-backend/estates-notification/mongodatabase"
)

// Repos container to hold handles for cache / db repos
type Repos struct {
	MasterDB  *database.Database
	ReplicaDB *database.Database
	Cache     *cache.Cache
	MongoDB   *mongodatabase.DBConfig
}
