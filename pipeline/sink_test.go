package pipeline

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/multierr"
	"go.viam.com/test"

	"github.com/khaledhikmat/vs-tomato/model"
	"github.com/khaledhikmat/vs-tomato/service/data"
	"github.com/khaledhikmat/vs-tomato/service/notify"
)

func TestSinkWrite(t *testing.T) {
	dataSvc := data.NewMemory()
	s := NewSink(dataSvc, notify.NewFake())

	err := s.WriteAll(context.Background(), []model.Record{
		model.GrowthState{Area: "a", GreenCount: 1},
		model.DiseaseEvent{Area: "a", Illness: "Leaf_Mold", Count: 1},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dataSvc.Records(), test.ShouldHaveLength, 2)
}

func TestSinkWriteAllCollectsFailures(t *testing.T) {
	dataSvc := data.NewMemory()
	dataSvc.FailWith(errors.New("locked"))
	s := NewSink(dataSvc, nil)

	err := s.WriteAll(context.Background(), []model.Record{
		model.GrowthState{},
		model.DiseaseEvent{},
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 2)

	test.That(t, s.WriteAll(context.Background(), nil), test.ShouldBeNil)
}

func TestSinkNotify(t *testing.T) {
	notifySvc := notify.NewFake()
	s := NewSink(nil, notifySvc)

	test.That(t, s.Notify(context.Background(), "Disease is detected!"), test.ShouldBeNil)
	test.That(t, notifySvc.Messages(), test.ShouldResemble, []string{"Disease is detected!"})

	notifySvc.FailWith(errors.New("smtp down"))
	test.That(t, s.Notify(context.Background(), "again"), test.ShouldNotBeNil)

	// Without a data service writes are dropped.
	test.That(t, s.Write(context.Background(), model.GrowthState{}), test.ShouldBeNil)
}
