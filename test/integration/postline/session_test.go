// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

//go:build integration

package postline_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/postline/postline/internal/session"
)

var _ = Describe("RedisStore", func() {
	var (
		store *session.RedisStore
		token string
	)

	BeforeEach(func() {
		env.truncate()
		store = session.NewRedisStore(env.redis)

		var err error
		token, err = session.NewToken()
		Expect(err).NotTo(HaveOccurred())
	})

	It("round-trips a payload under a hashed key", func() {
		Expect(store.Set(env.ctx, token, session.Payload{UserID: 7}, time.Hour)).To(Succeed())

		p, found, err := store.Get(env.ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(p.UserID).To(Equal(int64(7)))

		key := store.Key(token)
		Expect(key).To(HavePrefix(session.DefaultKeyPrefix))
		Expect(key).NotTo(ContainSubstring(token))
		Expect(env.redis.Exists(env.ctx, key).Val()).To(Equal(int64(1)))
	})

	It("stores the ttl on the key", func() {
		Expect(store.Set(env.ctx, token, session.Payload{UserID: 7}, time.Hour)).To(Succeed())

		ttl := env.redis.TTL(env.ctx, store.Key(token)).Val()
		Expect(ttl).To(BeNumerically(">", 59*time.Minute))
		Expect(ttl).To(BeNumerically("<=", time.Hour))
	})

	It("reports absent tokens as not found", func() {
		_, found, err := store.Get(env.ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("deletes entries", func() {
		Expect(store.Set(env.ctx, token, session.Payload{UserID: 7}, time.Hour)).To(Succeed())
		Expect(store.Delete(env.ctx, token)).To(Succeed())

		_, found, err := store.Get(env.ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
		Expect(store.Delete(env.ctx, token)).To(Succeed())
	})

	It("treats corrupt payloads as absent", func() {
		Expect(env.redis.Set(env.ctx, store.Key(token), "{not json", time.Hour).Err()).To(Succeed())

		_, found, err := store.Get(env.ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("extends the ttl on read when touch is enabled", func() {
		touching := session.NewRedisStore(env.redis, session.WithTouch(2*time.Hour))
		Expect(touching.Set(env.ctx, token, session.Payload{UserID: 7}, time.Minute)).To(Succeed())

		_, found, err := touching.Get(env.ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(env.redis.TTL(env.ctx, touching.Key(token)).Val()).To(BeNumerically(">", time.Hour))
	})

	It("isolates stores with different prefixes", func() {
		other := session.NewRedisStore(env.redis, session.WithKeyPrefix("other:"))
		Expect(store.Set(env.ctx, token, session.Payload{UserID: 7}, time.Hour)).To(Succeed())

		_, found, err := other.Get(env.ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})
})
