package backend

import (
	"github.com/bjaus/dispatch/internal/store"
	"github.com/bjaus/dispatch/model"
)

var (
	contactSchema = model.NewSchema("ContactInfo",
		model.Field{Name: "phone", Type: model.String, Description: "Phone number"},
		model.Field{Name: "email", Type: model.String, Description: "Email address"},
		model.Field{Name: "note", Type: model.String, Description: "Free-form note"},
	)

	memberSchema = model.NewSchema("MemberCreate",
		model.Field{Name: "name", Type: model.String, Required: true, Check: model.MinLength(1)},
		model.Field{Name: "part", Type: model.String, Required: true, Check: model.MinLength(1)},
		model.Field{Name: "position", Type: model.String, Required: true, Check: model.MinLength(1)},
		model.Field{Name: "contact", Schema: contactSchema, Factory: contactSchema.Factory()},
	)
	memberUpdateSchema = memberSchema.Partial("MemberUpdate")

	materialSchema = model.NewSchema("MaterialCreate",
		model.Field{Name: "name", Type: model.String, Required: true, Check: model.MinLength(1)},
		model.Field{Name: "part", Type: model.String, Required: true, Check: model.MinLength(1)},
		model.Field{Name: "quantity", Type: model.Int, Required: true, Check: model.Minimum(0)},
	)
	materialUpdateSchema = materialSchema.Partial("MaterialUpdate")

	scheduleSchema = model.NewSchema("ScheduleCreate",
		model.Field{Name: "name", Type: model.String, Required: true, Check: model.MinLength(1)},
		model.Field{Name: "event_date", Type: model.String, Required: true, Check: model.Layout(store.DateLayout)},
		model.Field{Name: "start_time", Type: model.String, Check: model.Layout(store.TimeLayout),
			Description: "Defaults to the start of the event date"},
		model.Field{Name: "end_time", Type: model.String, Check: model.Layout(store.TimeLayout),
			Description: "Defaults to the end of the event date"},
	)
	scheduleUpdateSchema = scheduleSchema.Partial("ScheduleUpdate")

	taskSchema = model.NewSchema("TaskCreate",
		model.Field{Name: "name", Type: model.String, Required: true, Check: model.MinLength(1)},
		model.Field{Name: "stage", Type: model.String, Required: true, Check: model.MinLength(1)},
		model.Field{Name: "start_time", Type: model.String, Required: true, Check: model.Layout(store.TimeLayout)},
		model.Field{Name: "end_time", Type: model.String, Required: true, Check: model.Layout(store.TimeLayout)},
		model.Field{Name: "location", Type: model.String},
		model.Field{Name: "status", Type: model.String, Default: store.TaskPlanned, Check: model.Enum(store.TaskStatuses...)},
		model.Field{Name: "note", Type: model.String},
	)
	taskUpdateSchema = taskSchema.Partial("TaskUpdate")

	taskStatusSchema = model.NewSchema("TaskStatusUpdate",
		model.Field{Name: "status", Type: model.String, Required: true, Check: model.Enum(store.TaskStatuses...)},
	)

	todoSchema = model.NewSchema("TodoCreate",
		model.Field{Name: "title", Type: model.String, Required: true, Check: model.MinLength(1)},
		model.Field{Name: "description", Type: model.String},
		model.Field{Name: "due_date", Type: model.String, Check: model.Layout(store.DateLayout)},
		model.Field{Name: "status", Type: model.String, Default: store.TodoPending, Check: model.Enum(store.TodoStatuses...)},
		model.Field{Name: "assignee_id", Type: model.Int, Check: model.Minimum(1)},
	)
	todoUpdateSchema = todoSchema.Partial("TodoUpdate")
)

type (
	memberSpec         struct{}
	memberUpdateSpec   struct{}
	materialSpec       struct{}
	materialUpdateSpec struct{}
	scheduleSpec       struct{}
	scheduleUpdateSpec struct{}
	taskSpec           struct{}
	taskUpdateSpec     struct{}
	taskStatusSpec     struct{}
	todoSpec           struct{}
	todoUpdateSpec     struct{}
)

func (memberSpec) Schema() *model.Schema         { return memberSchema }
func (memberUpdateSpec) Schema() *model.Schema   { return memberUpdateSchema }
func (materialSpec) Schema() *model.Schema       { return materialSchema }
func (materialUpdateSpec) Schema() *model.Schema { return materialUpdateSchema }
func (scheduleSpec) Schema() *model.Schema       { return scheduleSchema }
func (scheduleUpdateSpec) Schema() *model.Schema { return scheduleUpdateSchema }
func (taskSpec) Schema() *model.Schema           { return taskSchema }
func (taskUpdateSpec) Schema() *model.Schema     { return taskUpdateSchema }
func (taskStatusSpec) Schema() *model.Schema     { return taskStatusSchema }
func (todoSpec) Schema() *model.Schema           { return todoSchema }
func (todoUpdateSpec) Schema() *model.Schema     { return todoUpdateSchema }

// Request bodies.
type (
	MemberCreate     = model.Of[memberSpec]
	MemberUpdate     = model.Of[memberUpdateSpec]
	MaterialCreate   = model.Of[materialSpec]
	MaterialUpdate   = model.Of[materialUpdateSpec]
	ScheduleCreate   = model.Of[scheduleSpec]
	ScheduleUpdate   = model.Of[scheduleUpdateSpec]
	TaskCreate       = model.Of[taskSpec]
	TaskUpdate       = model.Of[taskUpdateSpec]
	TaskStatusUpdate = model.Of[taskStatusSpec]
	TodoCreate       = model.Of[todoSpec]
	TodoUpdate       = model.Of[todoUpdateSpec]
)
