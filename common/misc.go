package common

import (
	"os"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

const defaultServiceName = "tenantry"

var serviceInstance, _ = os.Hostname()

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func NextId(idWorker *sonyflake.Sonyflake) types.ID {
	id, err := idWorker.NextID()
	if err != nil {
		panic(err)
	}
	return types.ID(id)
}

func GetServiceName() string {
	if name := os.Getenv("SERVICE_NAME"); name != "" {
		return name
	}
	return defaultServiceName
}

func GetServiceInstance() string {
	return serviceInstance
}

// StringOrNull renders an optional value the way it is reported in messages.
func StringOrNull(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}
