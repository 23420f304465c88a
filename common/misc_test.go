package common_test

import (
	"os"
	"tenantry/common"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var _ = Describe("Misc", func() {
	Describe("NextId", func() {
		It("should generate increasing ids", func() {
			worker := sonyflake.NewSonyflake(sonyflake.Settings{})
			id1 := common.NextId(worker)
			id2 := common.NextId(worker)
			Expect(id1).ToNot(BeZero())
			Expect(id2 > id1).To(BeTrue())
		})
	})

	Describe("GetServiceName", func() {
		AfterEach(func() {
			Expect(os.Unsetenv("SERVICE_NAME")).To(Succeed())
		})

		It("should fall back to default name", func() {
			Expect(os.Unsetenv("SERVICE_NAME")).To(Succeed())
			Expect(common.GetServiceName()).To(Equal("tenantry"))
		})
		It("should honor SERVICE_NAME", func() {
			Expect(os.Setenv("SERVICE_NAME", "idm")).To(Succeed())
			Expect(common.GetServiceName()).To(Equal("idm"))
		})
	})

	Describe("StringOrNull", func() {
		It("should render nil as null", func() {
			v := "a"
			Expect(common.StringOrNull(nil)).To(Equal("null"))
			Expect(common.StringOrNull(&v)).To(Equal("a"))
		})
	})

	Describe("DefaultFieldsHook", func() {
		It("should stamp service fields", func() {
			e := logrus.NewEntry(logrus.New())
			Expect((&common.DefaultFieldsHook{}).Fire(e)).To(Succeed())
			Expect(e.Data["serviceName"]).To(Equal(common.GetServiceName()))
			Expect(e.Data).To(HaveKey("serviceInstance"))
		})
	})

	Describe("ConfigureLog", func() {
		It("should ignore unknown levels", func() {
			common.ConfigureLog("debug")
			Expect(common.Log.GetLevel()).To(Equal(logrus.DebugLevel))
			common.ConfigureLog("not-a-level")
			Expect(common.Log.GetLevel()).To(Equal(logrus.DebugLevel))
			common.ConfigureLog("info")
		})
	})
})
