// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

//go:build integration

package postline_test

import (
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/postline/postline/internal/auth"
	authpg "github.com/postline/postline/internal/auth/postgres"
	"github.com/postline/postline/internal/post"
	postpg "github.com/postline/postline/internal/post/postgres"
	"github.com/postline/postline/internal/store"
)

var _ = Describe("UserRepository", func() {
	var users *authpg.UserRepository

	BeforeEach(func() {
		env.truncate()
		users = authpg.NewUserRepository(env.pool)
	})

	It("creates and reads back a user", func() {
		u := &auth.User{Username: "alice", PasswordHash: "$argon2id$stub"}
		Expect(users.Create(env.ctx, u)).To(Succeed())
		Expect(u.ID).To(BeNumerically(">", 0))
		Expect(u.CreatedAt).NotTo(BeZero())

		byID, err := users.GetByID(env.ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID.Username).To(Equal("alice"))
		Expect(byID.PasswordHash).To(Equal("$argon2id$stub"))

		byName, err := users.GetByUsername(env.ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(byName.ID).To(Equal(u.ID))
	})

	It("matches usernames exactly", func() {
		Expect(users.Create(env.ctx, &auth.User{Username: "alice", PasswordHash: "h"})).To(Succeed())

		_, err := users.GetByUsername(env.ctx, "Alice")
		Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
	})

	It("reports missing users as not found", func() {
		_, err := users.GetByID(env.ctx, 999)
		Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
	})

	It("maps duplicate usernames to a unique violation", func() {
		Expect(users.Create(env.ctx, &auth.User{Username: "alice", PasswordHash: "h"})).To(Succeed())

		err := users.Create(env.ctx, &auth.User{Username: "alice", PasswordHash: "h2"})
		Expect(store.IsUniqueViolation(err)).To(BeTrue())

		var ce *store.ConstraintError
		Expect(errors.As(err, &ce)).To(BeTrue())
		Expect(ce.Constraint).To(Equal("users_username_key"))
	})

	It("lets exactly one of many concurrent registrations win", func() {
		const writers = 8
		var wg sync.WaitGroup
		results := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				results <- users.Create(env.ctx, &auth.User{Username: "race", PasswordHash: "h"})
			}()
		}
		wg.Wait()
		close(results)

		var ok, taken int
		for err := range results {
			switch {
			case err == nil:
				ok++
			case store.IsUniqueViolation(err):
				taken++
			default:
				Fail("unexpected error: " + err.Error())
			}
		}
		Expect(ok).To(Equal(1))
		Expect(taken).To(Equal(writers - 1))
	})
})

var _ = Describe("PostRepository", func() {
	var posts *postpg.PostRepository

	BeforeEach(func() {
		env.truncate()
		posts = postpg.NewPostRepository(env.pool)
	})

	It("lists posts in id order", func() {
		for _, title := range []string{"first", "second", "third"} {
			Expect(posts.Create(env.ctx, &post.Post{Title: title})).To(Succeed())
		}

		list, err := posts.List(env.ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(3))
		Expect(list[0].Title).To(Equal("first"))
		Expect(list[2].ID).To(Equal(int64(3)))
	})

	It("updates the title and refreshes updated_at", func() {
		p := &post.Post{Title: "draft"}
		Expect(posts.Create(env.ctx, p)).To(Succeed())
		created := p.UpdatedAt

		p.Title = "final"
		Expect(posts.Update(env.ctx, p)).To(Succeed())
		Expect(p.UpdatedAt).To(BeTemporally(">=", created))

		got, err := posts.Get(env.ctx, p.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Title).To(Equal("final"))
	})

	It("reports updates of missing posts as not found", func() {
		err := posts.Update(env.ctx, &post.Post{ID: 42, Title: "ghost"})
		Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
	})

	It("deletes idempotently", func() {
		p := &post.Post{Title: "doomed"}
		Expect(posts.Create(env.ctx, p)).To(Succeed())

		n, err := posts.Delete(env.ctx, p.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))

		n, err = posts.Delete(env.ctx, p.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())

		_, err = posts.Get(env.ctx, p.ID)
		Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
	})
})

var _ = Describe("Migrator", func() {
	It("reports the latest embedded version", func() {
		version, dirty, err := env.migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())

		versions, err := store.MigrationVersions()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(versions[len(versions)-1]))

		pending, err := env.migrator.Pending()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())
	})

	It("treats a repeated up as a no-op", func() {
		Expect(env.migrator.Up()).To(Succeed())
	})

	It("rolls back and reapplies the schema", func() {
		Expect(env.migrator.Down()).To(Succeed())

		version, _, err := env.migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())

		var exists bool
		Expect(env.pool.QueryRow(env.ctx, `SELECT to_regclass('public.posts') IS NOT NULL`).Scan(&exists)).To(Succeed())
		Expect(exists).To(BeFalse())

		Expect(env.migrator.Up()).To(Succeed())
		Expect(env.pool.QueryRow(env.ctx, `SELECT to_regclass('public.posts') IS NOT NULL`).Scan(&exists)).To(Succeed())
		Expect(exists).To(BeTrue())
	})
})
