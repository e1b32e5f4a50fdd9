package model

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInputValidate(t *testing.T) {
	Convey("Given todo inputs", t, func() {
		Convey("When the title has text", func() {
			Convey("Then validation should pass", func() {
				So(Input{Title: "Buy milk"}.Validate(), ShouldBeNil)
			})
		})

		Convey("When the title is empty or whitespace", func() {
			Convey("Then validation should fail with ErrInvalidTitle", func() {
				So(errors.Is(Input{}.Validate(), ErrInvalidTitle), ShouldBeTrue)
				So(errors.Is(Input{Title: " \t\n"}.Validate(), ErrInvalidTitle), ShouldBeTrue)
			})
		})
	})
}

func TestTodoApply(t *testing.T) {
	Convey("Given an existing todo", t, func() {
		todo := Todo{ID: 7, Title: "Buy milk"}

		Convey("When applying an update", func() {
			updated := todo.Apply(Input{Title: "Buy oat milk", Completed: true})

			Convey("Then fields are overwritten and the id is kept", func() {
				So(updated, ShouldResemble, Todo{ID: 7, Title: "Buy oat milk", Completed: true})
				So(todo.Title, ShouldEqual, "Buy milk")
			})
		})
	})
}

func TestTodoJSON(t *testing.T) {
	Convey("Given a todo", t, func() {
		b, err := json.Marshal(Todo{ID: 1, Title: "Buy milk"})

		Convey("Then it should encode with lower-case keys and explicit completed", func() {
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"id":1,"title":"Buy milk","completed":false}`)
		})
	})
}
